package artifact

import "testing"

func TestCatalogCoversAllListedTypes(t *testing.T) {
	for _, typ := range All() {
		if !Known(typ) {
			t.Errorf("type %q listed in All() but missing from catalog", typ)
		}
		if Title(typ) == string(typ) {
			t.Errorf("type %q has no display title", typ)
		}
	}
}

func TestRelationshipsReferenceKnownTypes(t *testing.T) {
	for _, typ := range All() {
		for _, rel := range RelatedTypes(typ) {
			if !Known(rel) {
				t.Errorf("%q lists unknown related type %q", typ, rel)
			}
			if rel == typ {
				t.Errorf("%q lists itself as related", typ)
			}
		}
	}
}

func TestPriorityTiers(t *testing.T) {
	if PriorityOf(ProjectCharter) != PriorityCritical {
		t.Error("project charter should be critical")
	}
	if PriorityOf(WBS) != PriorityHigh {
		t.Error("WBS should be high priority")
	}
	if PriorityOf(QualityPlan) != PriorityMedium {
		t.Error("quality plan should be medium priority")
	}
	if PriorityOf("some-imported-doc") != PriorityLow {
		t.Error("unknown types default to low priority")
	}
}

func TestUnknownTypeFallbacks(t *testing.T) {
	if Known("not-a-doc") {
		t.Error("unexpected catalog entry")
	}
	if CategoryOf("not-a-doc") != CategoryImported {
		t.Error("unknown types should be categorized as imported")
	}
	if got := Title("not-a-doc"); got != "not-a-doc" {
		t.Errorf("expected raw type string title, got %q", got)
	}
}
