package app

import "testing"

// TestParseCommand はサブコマンドの解析を検証する。
func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Command
	}{
		{"引数なし", nil, CommandServe},
		{"serve", []string{"serve"}, CommandServe},
		{"seed", []string{"seed"}, CommandSeed},
		{"healthcheck", []string{"healthcheck"}, CommandHealthcheck},
		{"サポート外のコマンド", []string{"unknown"}, CommandServe},
		{"後続引数は無視", []string{"seed", "extra"}, CommandSeed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseCommand(tt.args); got != tt.want {
				t.Errorf("ParseCommand(%v) = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}
