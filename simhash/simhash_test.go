package simhash

import (
	"math"
	"testing"
)

func TestFingerprintDeterministic(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog"
	if Fingerprint(text) != Fingerprint(text) {
		t.Error("identical texts produced different fingerprints")
	}
}

func TestFingerprintCaseInsensitive(t *testing.T) {
	if Fingerprint("Quick Brown Fox") != Fingerprint("quick brown fox") {
		t.Error("fingerprint should ignore case")
	}
}

func TestFingerprintSimilarTexts(t *testing.T) {
	fp1 := Fingerprint("the quick brown fox jumps over the lazy dog")
	fp2 := Fingerprint("the quick brown fox leaps over the lazy dog")

	if dist := Distance(fp1, fp2); dist > 10 {
		t.Errorf("similar texts have distance %d, want <= 10", dist)
	}
}

func TestFingerprintDifferentTexts(t *testing.T) {
	fp1 := Fingerprint("the quick brown fox jumps over the lazy dog")
	fp2 := Fingerprint("completely unrelated content about quantum physics and mathematics")

	if dist := Distance(fp1, fp2); dist < 5 {
		t.Errorf("different texts have distance %d, want >= 5", dist)
	}
}

func TestFingerprintEmptyAndWhitespace(t *testing.T) {
	if fp := Fingerprint(""); fp != 0 {
		t.Errorf("empty input fingerprint = %064b, want 0", fp)
	}
	if fp := Fingerprint("   \t\n  "); fp != 0 {
		t.Errorf("whitespace fingerprint = %064b, want 0", fp)
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
		want int
	}{
		{"identical", 0xFF, 0xFF, 0},
		{"all different", 0, ^uint64(0), 64},
		{"one bit", 0, 1, 1},
		{"two bits", 0, 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); got != tt.want {
				t.Errorf("Distance(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilarThreshold(t *testing.T) {
	fp1 := Fingerprint("the quick brown fox")
	fp2 := Fingerprint("a completely different text about nothing related")
	dist := Distance(fp1, fp2)

	if !Similar(fp1, fp1, 0) {
		t.Error("fingerprint should be similar to itself at threshold 0")
	}
	if Similar(fp1, fp2, dist-1) {
		t.Errorf("should not be similar below distance %d", dist)
	}
	if !Similar(fp1, fp2, dist) {
		t.Errorf("should be similar at threshold equal to distance %d", dist)
	}
}

func TestVectorDeterministic(t *testing.T) {
	a := Vector("knowledge graph bookmarks", 384)
	b := Vector("knowledge graph bookmarks", 384)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vector differs at dim %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestVectorNormalised(t *testing.T) {
	v := Vector("some bookmark text", 384)
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-9 {
		t.Errorf("vector norm = %v, want 1", math.Sqrt(norm))
	}
}

func TestVectorEmptyText(t *testing.T) {
	v := Vector("", 8)
	if len(v) != 8 {
		t.Fatalf("len = %d, want 8", len(v))
	}
	for i, x := range v {
		if x != 0 {
			t.Errorf("dim %d = %v, want 0", i, x)
		}
	}
}

func TestCosine(t *testing.T) {
	a := Vector("golang concurrency patterns", 64)
	b := Vector("golang concurrency patterns", 64)
	c := Vector("recipes for chocolate cake", 64)

	if got := Cosine(a, b); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Cosine(a, a) = %v, want 1", got)
	}
	if got := Cosine(a, c); got >= 0.99 {
		t.Errorf("Cosine of unrelated texts = %v, want < 0.99", got)
	}
	if got := Cosine(a, nil); got != 0 {
		t.Errorf("Cosine with mismatched lengths = %v, want 0", got)
	}
}
