package textnorm

import "testing"

func TestStrict(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  hola   mundo  ", "hola mundo"},
		{"¿Cómo estás?", "Cómo estás"},
		{"¡Buenos días!", "Buenos días"},
		{"(ella come.)", "ella come"},
		{"ya\tvoy", "ya voy"},
	}
	for _, c := range cases {
		if got := Strict(c.in); got != c.want {
			t.Fatalf("Strict(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRelaxed(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Cómo estás", "como estas"},
		{"AÑO", "año"},   // the tilde on ñ is not a vowel accent
		{"pingüino", "pinguino"},
		{"Él está aquí", "el esta aqui"},
	}
	for _, c := range cases {
		if got := Relaxed(c.in); got != c.want {
			t.Fatalf("Relaxed(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestEvaluate(t *testing.T) {
	accepted := []string{"Yo hablo español.", "Hablo español."}

	cases := []struct {
		answer string
		want   Verdict
	}{
		{"Yo hablo español.", VerdictExact},
		{"  Hablo   español ", VerdictExact},
		{"yo hablo espanol", VerdictWarning},
		{"hablo español", VerdictWarning}, // case slip

		{"HABLO ESPAÑOL", VerdictWarning},
		{"yo hablo ingles", VerdictWrong},
		{"", VerdictWrong},
	}
	for _, c := range cases {
		if got := Evaluate(c.answer, accepted); got != c.want {
			t.Fatalf("Evaluate(%q) = %v, want %v", c.answer, got, c.want)
		}
	}
}

// año/ano differ by a consonant mark, not a vowel accent; the relaxed
// comparison must not erase that distinction.
func TestEnyeNeverCollapses(t *testing.T) {
	if got := Evaluate("tengo veinte anos", []string{"tengo veinte años"}); got != VerdictWrong {
		t.Fatalf("expected VerdictWrong, got %v", got)
	}
}
