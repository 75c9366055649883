package security

import "testing"

func TestAnalyzeCommandQuoteAware(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		wantSafe bool
	}{
		{
			name:     "semicolon inside single quotes",
			command:  "echo 'hello; world'",
			wantSafe: true,
		},
		{
			name:     "semicolon inside double quotes",
			command:  `echo "hello; world"`,
			wantSafe: true,
		},
		{
			name:     "semicolon outside quotes",
			command:  "echo 'hello'; echo 'world'",
			wantSafe: false,
		},
		{
			name:     "pipe inside quotes",
			command:  "echo 'cat | grep'",
			wantSafe: true,
		},
		{
			name:     "pipe outside quotes",
			command:  "echo hello | grep h",
			wantSafe: false,
		},
		{
			name:     "redirect inside quotes",
			command:  `echo "data > file"`,
			wantSafe: true,
		},
		{
			name:     "redirect outside quotes",
			command:  `echo "data" > file`,
			wantSafe: false,
		},
		{
			name:     "subshell inside quotes",
			command:  "echo '$(whoami)'",
			wantSafe: true,
		},
		{
			name:     "subshell outside quotes",
			command:  "echo $(whoami)",
			wantSafe: false,
		},
		{
			name:     "backtick inside single quotes",
			command:  "echo '`whoami`'",
			wantSafe: true,
		},
		{
			name:     "backtick outside quotes",
			command:  "echo `whoami`",
			wantSafe: false,
		},
		{
			name:     "escaped quote",
			command:  `echo "hello\"world"`,
			wantSafe: true,
		},
		{
			name:     "mixed quotes safe",
			command:  `echo "hello 'world'" 'foo "bar"'`,
			wantSafe: true,
		},
		{
			name:     "mixed quotes with external semicolon",
			command:  `echo "hello"; echo 'world'`,
			wantSafe: false,
		},
		{
			name:     "background inside quotes",
			command:  "echo 'sleep &'",
			wantSafe: true,
		},
		{
			name:     "background outside quotes",
			command:  "sleep 10 &",
			wantSafe: false,
		},
		{
			name:     "complex safe command",
			command:  `python3 -c "print('hello; world')" --arg="value|with|pipes"`,
			wantSafe: true,
		},
		{
			name:     "empty string",
			command:  "",
			wantSafe: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := AnalyzeCommandQuoteAware(tt.command)

			if result.IsSafe != tt.wantSafe {
				t.Errorf("AnalyzeCommandQuoteAware(%q).IsSafe = %v, want %v\nTokens: %v\nReason: %s",
					tt.command, result.IsSafe, tt.wantSafe, result.DangerousTokens, result.Reason)
			}
		})
	}
}

func TestStripQuoted(t *testing.T) {
	tests := []struct {
		name        string
		command     string
		wantContain string
		wantAbsent  string
	}{
		{
			name:        "quoted rm -rf survives as blanks",
			command:     `echo "please don't rm -rf / my files"`,
			wantContain: "echo",
		},
		{
			name:        "unquoted sudo remains visible",
			command:     "sudo rm file",
			wantContain: "sudo",
		},
		{
			name:    "quoted sudo is blanked",
			command: `echo "never run sudo anything"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stripped := StripQuoted(tt.command)
			if len(stripped) != len(tt.command) {
				t.Fatalf("StripQuoted(%q) changed length: got %d, want %d", tt.command, len(stripped), len(tt.command))
			}
			if tt.wantContain != "" && !contains(stripped, tt.wantContain) {
				t.Errorf("StripQuoted(%q) = %q, want it to still contain %q", tt.command, stripped, tt.wantContain)
			}
		})
	}

	if contains(StripQuoted(`echo "never run sudo anything"`), "sudo") {
		t.Error("StripQuoted() left a quoted word visible to deny matching")
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
