package site

// pageTemplate is the html/template for each documentation page.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}} — {{.ProjectName}}</title>
  <link rel="stylesheet" href="style.css">
</head>
<body>
  <nav class="sidebar">
    <h2 class="project-title"><a href="index.html">{{.ProjectName}}</a></h2>
    {{$active := .Active}}
    <ul class="nav">
      {{range .Nav}}
      <li class="{{if eq .Href $active}}active{{end}}"><a href="{{.Href}}">{{.Title}}</a></li>
      {{end}}
    </ul>
  </nav>
  <main class="content">
    <article class="page-content">
      {{.Content}}
    </article>
  </main>
</body>
</html>`

// cssContent is the stylesheet for the documentation site.
const cssContent = `:root {
  --bg: #ffffff;
  --fg: #1f2328;
  --muted: #57606a;
  --accent: #0969da;
  --border: #d0d7de;
  --sidebar-bg: #f6f8fa;
}

* { box-sizing: border-box; }

body {
  margin: 0;
  font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Helvetica, Arial, sans-serif;
  color: var(--fg);
  background: var(--bg);
  display: flex;
}

.sidebar {
  width: 280px;
  min-height: 100vh;
  padding: 24px 16px;
  background: var(--sidebar-bg);
  border-right: 1px solid var(--border);
  flex-shrink: 0;
}

.project-title { margin: 0 0 16px; font-size: 18px; }
.project-title a { color: var(--fg); text-decoration: none; }

.nav { list-style: none; margin: 0; padding: 0; }
.nav li { margin: 4px 0; }
.nav li a {
  display: block;
  padding: 6px 10px;
  border-radius: 6px;
  color: var(--muted);
  text-decoration: none;
  font-size: 14px;
}
.nav li a:hover { background: rgba(9, 105, 218, 0.08); color: var(--accent); }
.nav li.active a { background: rgba(9, 105, 218, 0.12); color: var(--accent); font-weight: 600; }

.content { flex: 1; padding: 40px 48px; max-width: 960px; }

.page-content h1 { border-bottom: 1px solid var(--border); padding-bottom: 8px; }
.page-content h2 { margin-top: 32px; }
.page-content a { color: var(--accent); }
.page-content code {
  background: var(--sidebar-bg);
  padding: 2px 5px;
  border-radius: 4px;
  font-size: 85%;
}
.page-content pre {
  background: var(--sidebar-bg);
  padding: 16px;
  border-radius: 8px;
  overflow-x: auto;
}
.page-content pre code { background: none; padding: 0; }

.page-content table {
  border-collapse: collapse;
  width: 100%;
  margin: 16px 0;
}
.page-content th, .page-content td {
  border: 1px solid var(--border);
  padding: 8px 12px;
  text-align: left;
  font-size: 14px;
}
.page-content th { background: var(--sidebar-bg); }

.page-content blockquote {
  margin: 0;
  padding: 0 16px;
  color: var(--muted);
  border-left: 4px solid var(--border);
}
`
