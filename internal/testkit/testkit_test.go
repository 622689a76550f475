package testkit

import (
	"math"
	"testing"
	"time"
)

func TestCustomerDataGenerator_Basic(t *testing.T) {
	config := CustomerGeneratorConfig{
		CustomerCount: 50,
		MissingRate:   0.1,
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC),
		Seed:          42,
	}

	ds, err := NewCustomerDataGenerator(config).Generate()
	if err != nil {
		t.Fatalf("Failed to generate dataset: %v", err)
	}
	if ds.RowCount() != 50 {
		t.Errorf("Expected 50 rows, got %d", ds.RowCount())
	}

	views := ds.TypedViews()
	if len(views.Numeric) != 4 {
		t.Errorf("Expected 4 numeric columns, got %v", views.Numeric)
	}
	if len(views.Temporal) != 1 {
		t.Errorf("Expected 1 temporal column, got %v", views.Temporal)
	}

	sat, _ := ds.Column("satisfaction")
	for i := 0; i < sat.Len(); i++ {
		if v := sat.Float(i); v < 1 || v > 5 {
			t.Errorf("Row %d satisfaction %v outside 1-5", i, v)
		}
	}
}

func TestCustomerDataGenerator_Deterministic(t *testing.T) {
	a, err := NewCustomerDataGenerator(DefaultCustomerConfig()).Generate()
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewCustomerDataGenerator(DefaultCustomerConfig()).Generate()
	if err != nil {
		t.Fatal(err)
	}
	fa, _ := a.Fingerprint(a.Names()...)
	fb, _ := b.Fingerprint(b.Names()...)
	if fa != fb {
		t.Error("Same seed should produce identical datasets")
	}

	age, _ := a.Column("age")
	missing := 0
	for _, v := range age.Floats() {
		if math.IsNaN(v) {
			missing++
		}
	}
	if missing == 0 {
		t.Error("Expected some missing ages with the default missing rate")
	}
}

func TestBlobs(t *testing.T) {
	ds, err := Blobs(BlobConfig{
		Centers:    [][]float64{{0, 0}, {10, 10}},
		PerCluster: 5,
		Spread:     0.1,
		Seed:       1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if ds.RowCount() != 10 {
		t.Errorf("Expected 10 rows, got %d", ds.RowCount())
	}
	f1, _ := ds.Column("f1")
	if f1.Float(9) < 9 {
		t.Errorf("Expected last point near the second center, got %v", f1.Float(9))
	}

	if _, err := Blobs(BlobConfig{Centers: [][]float64{{0, 0}, {1}}, PerCluster: 1}); err == nil {
		t.Error("Expected error for ragged centers")
	}
}
