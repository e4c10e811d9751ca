package transcript

import "testing"

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		previous string
		current  string
		want     string
	}{
		{
			name:     "first transcription",
			previous: "",
			current:  "[00:00:00.000 --> 00:00:01.000]  hello",
			want:     "hello",
		},
		{
			name:     "extension yields suffix",
			previous: "[00:00:00.000 --> 00:00:01.000]  hello",
			current:  "[00:00:00.000 --> 00:00:02.000]  hello world",
			want:     "world",
		},
		{
			name:     "identical yields empty",
			previous: "[00:00:00.000 --> 00:00:01.000]  hello world",
			current:  "[00:00:00.500 --> 00:00:01.500]  hello world",
			want:     "",
		},
		{
			name:     "rewrite yields full current text",
			previous: "hello word",
			current:  "hello world again",
			want:     "hello world again",
		},
		{
			name:     "empty current yields empty",
			previous: "hello",
			current:  "",
			want:     "",
		},
		{
			name:     "annotation-only current yields empty",
			previous: "hello",
			current:  "[00:00:00.000 --> 00:00:01.000]  ",
			want:     "",
		},
		{
			name:     "speaker turn marker is stripped",
			previous: "hello",
			current:  "hello there [SPEAKER_TURN]",
			want:     "there",
		},
		{
			name:     "shrunken current is a rewrite",
			previous: "hello world",
			current:  "hello",
			want:     "hello",
		},
		{
			name:     "whitespace-only delta trims to empty",
			previous: "hello",
			current:  "hello   ",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.previous, tt.current)
			if got != tt.want {
				t.Errorf("Diff(%q, %q) = %q, want %q", tt.previous, tt.current, got, tt.want)
			}
		})
	}
}

func TestDiffIdempotence(t *testing.T) {
	texts := []string{
		"",
		"hello",
		"[00:00:00.000 --> 00:00:01.000]  hello world",
		"multi word sentence with spaces",
	}

	for _, text := range texts {
		if got := Diff(text, text); got != "" {
			t.Errorf("Diff(T, T) = %q for T=%q, want empty", got, text)
		}
	}
}

func TestDiffExtensionLaw(t *testing.T) {
	base := "the quick brown"
	suffixes := []string{" fox", " fox jumps", "  fox jumps over"}

	for _, suffix := range suffixes {
		got := Diff(base, base+suffix)
		want := Clean(suffix)
		if got != want {
			t.Errorf("Diff(T, T+%q) = %q, want %q", suffix, got, want)
		}
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"[00:00:00.000 --> 00:00:03.000]  hello", "hello"},
		{"hello [SPEAKER_TURN] world", "hello  world"},
		{"  plain text  ", "plain text"},
		{"[unterminated annotation", ""},
		{"[a][b][c]", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Clean(tt.in); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
