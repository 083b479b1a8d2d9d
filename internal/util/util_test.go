// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// =============================================================================
// PRIVATE FILE WRITE TESTS
// =============================================================================

func TestWritePrivateFile_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	data := []byte(`[{"id":"session_1"}]`)

	if err := WritePrivateFile(path, data); err != nil {
		t.Fatalf("WritePrivateFile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != string(data) {
		t.Errorf("Content mismatch: got %q, want %q", string(content), string(data))
	}
}

func TestWritePrivateFile_OwnerOnly(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	dir := filepath.Join(t.TempDir(), "storage")
	path := filepath.Join(dir, "sessions.json")

	if err := WritePrivateFile(path, []byte("[]")); err != nil {
		t.Fatalf("WritePrivateFile failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %o, want 600", perm)
	}
	dirInfo, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Stat dir failed: %v", err)
	}
	if perm := dirInfo.Mode().Perm(); perm&0077 != 0 {
		t.Errorf("dir mode = %o, want no group/other bits", perm)
	}
}

func TestWritePrivateFile_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage", "deep", "sessions.json")

	if err := WritePrivateFile(path, []byte("[]")); err != nil {
		t.Fatalf("WritePrivateFile failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("File not created: %v", err)
	}
}

func TestWritePrivateFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")

	if err := WritePrivateFile(path, []byte("initial")); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	if err := WritePrivateFile(path, []byte("replaced")); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	content, _ := os.ReadFile(path)
	if string(content) != "replaced" {
		t.Errorf("Content = %q, want %q", string(content), "replaced")
	}
}

func TestWritePrivateFile_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sessions.json")

	for i := 0; i < 3; i++ {
		if err := WritePrivateFile(path, []byte("data")); err != nil {
			t.Fatalf("write %d failed: %v", i, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
}

func TestWritePrivateFile_TargetIsDirectory(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "sessions.json")
	if err := os.Mkdir(target, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(target, "keep"), nil, 0600); err != nil {
		t.Fatal(err)
	}

	if err := WritePrivateFile(target, []byte("x")); err == nil {
		t.Fatal("expected an error replacing a non-empty directory")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp file left behind: %d entries", len(entries))
	}
}

// =============================================================================
// STRING TESTS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"tiny limit", "hello", 2, "he"},
		{"zero", "hello", 0, ""},
		{"utf8", "héllo wörld", 8, "héllo..."},
		{"cjk", "你好世界你好世界", 5, "你好..."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := TruncateRunes(tc.input, tc.max); got != tc.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tc.input, tc.max, got, tc.want)
			}
		})
	}
}

func TestTruncateRunesNoEllipsis(t *testing.T) {
	tests := []struct {
		input string
		max   int
		want  string
	}{
		{"What are the hostel facilities?", 8, "What are"},
		{"short", 50, "short"},
		{"ünïcödé", 3, "ünï"},
		{"anything", 0, ""},
	}

	for _, tc := range tests {
		if got := TruncateRunesNoEllipsis(tc.input, tc.max); got != tc.want {
			t.Errorf("TruncateRunesNoEllipsis(%q, %d) = %q, want %q", tc.input, tc.max, got, tc.want)
		}
	}
}

func TestTruncateWidth(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"fits", "abc", 5, "abc"},
		{"ascii", "abcdefghij", 7, "abcd..."},
		{"wide chars", "你好世界", 6, "你..."},
		{"zero", "abc", 0, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := TruncateWidth(tc.input, tc.max)
			if got != tc.want {
				t.Errorf("TruncateWidth(%q, %d) = %q, want %q", tc.input, tc.max, got, tc.want)
			}
			if StringWidth(got) > tc.max {
				t.Errorf("result %q is %d cells wide, limit %d", got, StringWidth(got), tc.max)
			}
		})
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 4); got != "ab  " {
		t.Errorf("PadRight = %q, want %q", got, "ab  ")
	}
	if got := PadRight("你", 4); StringWidth(got) != 4 {
		t.Errorf("PadRight width = %d, want 4", StringWidth(got))
	}
	if got := PadRight("abcdef", 3); got != "abcdef" {
		t.Errorf("PadRight should not cut, got %q", got)
	}
}

func TestSingleLine(t *testing.T) {
	if got := SingleLine("  line one\nline two\r\nthree\r "); got != "line one line two three" {
		t.Errorf("SingleLine = %q", got)
	}
}

func TestRuneLen(t *testing.T) {
	if got := RuneLen("héllo"); got != 5 {
		t.Errorf("RuneLen = %d, want 5", got)
	}
}
