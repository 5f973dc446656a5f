package record_test

import (
	"errors"
	"strings"
	"testing"

	"metmaster/internal/record"
)

func TestNormalizeTypedFields(t *testing.T) {
	raw := record.NewRaw(map[string]string{
		record.ColObjectID:        " 436535 ",
		record.ColTitle:           " Wheat Field with Cypresses ",
		record.ColObjectBeginDate: "1889",
		record.ColObjectEndDate:   "",
		record.ColIsPublicDomain:  " True ",
		record.ColIsHighlight:     "",
		record.ColTags:            "Landscapes|Cypresses| Landscapes",
		record.ColPrimaryImage:    " https://images.example/a.jpg ",
	})

	art, err := record.Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if art.ObjectID != 436535 {
		t.Fatalf("unexpected object id %d", art.ObjectID)
	}
	if art.Title != "Wheat Field with Cypresses" {
		t.Fatalf("unexpected title %q", art.Title)
	}
	if art.ObjectBeginDate == nil || *art.ObjectBeginDate != 1889 {
		t.Fatalf("unexpected begin date %v", art.ObjectBeginDate)
	}
	if art.ObjectEndDate != nil {
		t.Fatalf("expected nil end date, got %d", *art.ObjectEndDate)
	}
	if art.IsPublicDomain != 1 || art.IsHighlight != 0 {
		t.Fatalf("unexpected flags pd=%d hl=%d", art.IsPublicDomain, art.IsHighlight)
	}
	if strings.Join(art.Tags, ",") != "Cypresses,Landscapes" {
		t.Fatalf("unexpected tags %q", art.Tags)
	}
	if art.CSVPrimaryImage != "https://images.example/a.jpg" || art.CSVPrimaryImageSmall != "" {
		t.Fatalf("unexpected csv images %q %q", art.CSVPrimaryImage, art.CSVPrimaryImageSmall)
	}
	if art.Department != "" || art.Culture != "" {
		t.Fatal("expected absent columns to read as empty text")
	}
	if !strings.Contains(art.MetadataJSON, `"Title":" Wheat Field with Cypresses "`) {
		t.Fatalf("metadata should keep raw values, got %s", art.MetadataJSON)
	}
}

func TestNormalizeRejectsBadObjectID(t *testing.T) {
	for _, id := range []string{"", "abc", "12a"} {
		raw := record.NewRaw(map[string]string{record.ColObjectID: id, record.ColTitle: "x"})
		if _, err := record.Normalize(raw); !errors.Is(err, record.ErrBadObjectID) {
			t.Fatalf("id %q: expected ErrBadObjectID, got %v", id, err)
		}
	}
	if _, err := record.Normalize(record.NewRaw(map[string]string{record.ColTitle: "x"})); !errors.Is(err, record.ErrBadObjectID) {
		t.Fatalf("missing id column: expected ErrBadObjectID, got %v", err)
	}
}
