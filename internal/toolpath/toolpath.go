// Package toolpath locates the external executables the pipeline shells out
// to. Resolution is deliberately uncached: it is a handful of stat calls, and
// an operator installing a tool mid-session should be picked up on the next
// invocation.
package toolpath

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Tool is a logical external dependency of the pipeline.
type Tool string

const (
	FFmpeg  Tool = "ffmpeg"
	FFprobe Tool = "ffprobe"
	Whisper Tool = "whisper"
	Piper   Tool = "piper"
)

// env override per tool, checked before any search path
var envOverrides = map[Tool]string{
	FFmpeg:  "REELCUT_FFMPEG_PATH",
	FFprobe: "REELCUT_FFPROBE_PATH",
	Whisper: "REELCUT_WHISPER_PATH",
	Piper:   "REELCUT_PIPER_PATH",
}

// binary names to try for tools that ship under more than one name
var aliases = map[Tool][]string{
	FFmpeg:  {"ffmpeg"},
	FFprobe: {"ffprobe"},
	Whisper: {"whisper-cli", "whisper-cpp", "main"},
	Piper:   {"piper"},
}

func searchDirs() []string {
	if runtime.GOOS == "windows" {
		return []string{
			`C:\ffmpeg\bin`,
			`C:\Program Files\ffmpeg\bin`,
			`C:\tools`,
		}
	}
	return []string{
		"/usr/local/bin",
		"/usr/bin",
		"/opt/homebrew/bin",
		"/opt/local/bin",
	}
}

// Resolve returns an invocable path for the tool: the environment override if
// set, otherwise the first candidate that exists in the fixed search
// directories or on PATH. When nothing is found the bare tool name is
// returned anyway so that the eventual spawn surfaces the OS "not found"
// error instead of this package guessing at a failure.
func Resolve(tool Tool) string {
	if env := os.Getenv(envOverrides[tool]); env != "" {
		return env
	}

	names := aliases[tool]
	if len(names) == 0 {
		names = []string{string(tool)}
	}

	for _, dir := range searchDirs() {
		for _, name := range names {
			candidate := filepath.Join(dir, name+exeSuffix())
			if fileExists(candidate) {
				return candidate
			}
		}
	}

	for _, name := range names {
		if found, err := exec.LookPath(name); err == nil {
			return found
		}
	}

	return names[0]
}

// Found reports whether Resolve located a real file rather than falling back
// to the bare name. Used by the doctor command, never by the pipeline itself.
func Found(tool Tool) bool {
	p := Resolve(tool)
	if filepath.Base(p) == p {
		_, err := exec.LookPath(p)
		return err == nil
	}
	return fileExists(p)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		// any stat error counts as absent, including permission problems
		return false
	}
	return !info.IsDir()
}

func exeSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
