package lily

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	inputFileName    = "input.ly"
	sampleRate       = "44100"
	workDirHashChars = 16
)

// ErrIncompleteOutput means a tool exited cleanly but did not write every expected file
var ErrIncompleteOutput = errors.New("not all output files were generated")

var pageNumberPattern = regexp.MustCompile(`^.*?(\d+)\.png$`)

// ProcessError is a non-zero exit of lilypond or fluidsynth
type ProcessError struct {
	Tool     string
	ExitCode int
	Stderr   string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("%s failed with exit code %d: %s", e.Tool, e.ExitCode, strings.TrimSpace(e.Stderr))
}

// Output lists the files produced by one lilypond run
type Output struct {
	Pages   []string `json:"pages"`
	Preview string   `json:"preview"`
	MIDI    string   `json:"midi"`
	// Cached is set when the output came from the render cache
	Cached bool `json:"-"`
}

func (o *Output) filesExist() bool {
	if len(o.Pages) == 0 {
		return false
	}
	for _, p := range append([]string{o.Preview, o.MIDI}, o.Pages...) {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

// Renderer runs the external tools inside CacheDir
type Renderer struct {
	Lilypond   string
	Fluidsynth string
	SoundFont  string
	CacheDir   string
	Cache      *Cache
}

// NewRenderer uses the tools found on PATH and an os cache directory
func NewRenderer(cacheDir string) (*Renderer, error) {
	if cacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("locate cache directory: %w", err)
		}
		cacheDir = filepath.Join(base, "magda-lsystem")
	}
	return &Renderer{
		Lilypond:   "lilypond",
		Fluidsynth: "fluidsynth",
		CacheDir:   cacheDir,
	}, nil
}

// Render engraves source into PNG pages, a preview image and a MIDI file named after stem
func (r *Renderer) Render(ctx context.Context, source, stem string) (*Output, error) {
	if err := checkStem(stem); err != nil {
		return nil, err
	}
	if r.Cache != nil {
		if out, ok := r.Cache.Get(source, stem); ok {
			log.Printf("♻️  Render cache hit for %s", stem)
			out.Cached = true
			return out, nil
		}
	}

	workDir := filepath.Join(r.CacheDir, workDirName(source, stem))
	if err := os.RemoveAll(workDir); err != nil {
		return nil, fmt.Errorf("clean render directory: %w", err)
	}
	if err := os.MkdirAll(workDir, 0750); err != nil {
		return nil, fmt.Errorf("create render directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(workDir, inputFileName), []byte(source), 0600); err != nil {
		return nil, fmt.Errorf("write lilypond input: %w", err)
	}

	start := time.Now()
	log.Printf("🎼 Running lilypond for %s", stem)
	if err := r.run(ctx, workDir, r.tool(r.Lilypond, "lilypond"), "--png", "-dpreview", "-o", stem, inputFileName); err != nil {
		return nil, err
	}

	out, err := collectOutput(workDir, stem)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ lilypond finished in %v (%d pages)", time.Since(start), len(out.Pages))

	if r.Cache != nil {
		if err := r.Cache.Put(source, stem, out); err != nil {
			log.Printf("⚠️  Failed to store render output in cache: %v", err)
		}
	}
	return out, nil
}

// Synthesize converts a MIDI file to WAV next to it using fluidsynth and SoundFont
func (r *Renderer) Synthesize(ctx context.Context, midiPath, stem string) (string, error) {
	if err := checkStem(stem); err != nil {
		return "", err
	}
	if r.SoundFont == "" {
		return "", errors.New("no sound font configured")
	}
	dir := filepath.Dir(midiPath)
	wavName := stem + ".wav"

	log.Printf("🔊 Running fluidsynth for %s", stem)
	if err := r.run(ctx, dir, r.tool(r.Fluidsynth, "fluidsynth"), "-ni", r.SoundFont, midiPath, "-F", wavName, "-r", sampleRate); err != nil {
		return "", err
	}

	wavPath := filepath.Join(dir, wavName)
	if _, err := os.Stat(wavPath); err != nil {
		return "", fmt.Errorf("fluidsynth: %w", ErrIncompleteOutput)
	}
	return wavPath, nil
}

func (r *Renderer) tool(configured, fallback string) string {
	if configured != "" {
		return configured
	}
	return fallback
}

func (r *Renderer) run(ctx context.Context, dir, tool string, args ...string) error {
	cmd := exec.CommandContext(ctx, tool, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.Stdout = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", filepath.Base(tool), ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ProcessError{Tool: filepath.Base(tool), ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
		}
		return fmt.Errorf("failed to run %s: %w", tool, err)
	}
	return nil
}

func collectOutput(dir, stem string) (*Output, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read render directory: %w", err)
	}

	var pages []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, stem) && strings.HasSuffix(name, ".png") && !strings.Contains(name, "preview") {
			pages = append(pages, filepath.Join(dir, name))
		}
	}
	sortPages(pages)

	out := &Output{
		Pages:   pages,
		Preview: filepath.Join(dir, stem+".preview.png"),
		MIDI:    filepath.Join(dir, stem+".midi"),
	}
	if !out.filesExist() {
		return nil, fmt.Errorf("lilypond: %w", ErrIncompleteOutput)
	}
	return out, nil
}

// sortPages orders "stem.png" first, then "stem-page2.png", "stem-page10.png" by number
func sortPages(pages []string) {
	sort.SliceStable(pages, func(i, j int) bool {
		a, b := filepath.Base(pages[i]), filepath.Base(pages[j])
		aPage, bPage := strings.Contains(a, "page"), strings.Contains(b, "page")
		if aPage != bPage {
			return !aPage
		}
		return pageNumber(a) < pageNumber(b)
	})
}

func pageNumber(name string) int {
	m := pageNumberPattern.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// workDirName has one directory per source and stem, like the cache key
func workDirName(source, stem string) string {
	return SourceHash(source)[:workDirHashChars] + "-" + stem
}

func checkStem(stem string) error {
	if stem == "" || strings.ContainsAny(stem, `/\`) || stem == "." || stem == ".." {
		return fmt.Errorf("invalid output name %q", stem)
	}
	return nil
}
