package phonemize

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/example/go-pocket-tts/internal/text"
)

// IPARunner abstracts the external grapheme-to-phoneme utility so tests can
// inject a fake without shelling out. Run sends text on stdin and returns
// the utility's raw IPA output from stdout.
type IPARunner interface {
	Run(ctx context.Context, text string) (string, error)
}

// ESpeakRunner shells out to an espeak-ng-compatible binary using options
// equivalent to "quiet", "IPA mode 3", "American English voice":
// `<exe> -q --ipa=3 -v en-us`.
type ESpeakRunner struct {
	ExePath string
	Timeout time.Duration
}

// NewESpeakRunner resolves exePath (defaulting to "espeak-ng" on PATH).
func NewESpeakRunner(exePath string) *ESpeakRunner {
	if exePath == "" {
		exePath = "espeak-ng"
	}
	return &ESpeakRunner{ExePath: exePath, Timeout: 10 * time.Second}
}

// Probe runs a no-op invocation to verify the external utility is usable.
// English and bilingual backend initialization fails if this fails.
func (r *ESpeakRunner) Probe() error {
	if _, err := exec.LookPath(r.ExePath); err != nil {
		return fmt.Errorf("espeak-ng-compatible phonemizer %q not found: %w", r.ExePath, err)
	}
	_, err := r.Run(context.Background(), "")
	if err != nil {
		return fmt.Errorf("probe %q failed: %w", r.ExePath, err)
	}
	return nil
}

func (r *ESpeakRunner) Run(ctx context.Context, input string) (string, error) {
	timeout := r.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.ExePath, "-q", "--ipa=3", "-v", "en-us")
	cmd.Stdin = strings.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("run %s: %w (stderr: %s)", r.ExePath, err, stderr.String())
	}

	return stdout.String(), nil
}

// EnglishPhonemizer converts English text to token ids via an external IPA
// utility followed by the Gruut-US rewrite (Matcha-EN, spec §4.3.2).
type EnglishPhonemizer struct {
	runner   IPARunner
	tokenMap map[string]int
}

// NewEnglishPhonemizer constructs the Matcha-EN phonemizer. It does not
// itself probe the runner; callers (backend initialize) invoke Probe for
// ESpeakRunner so probe failures surface as init errors per spec §7.
func NewEnglishPhonemizer(runner IPARunner, tokenMap map[string]int) *EnglishPhonemizer {
	return &EnglishPhonemizer{runner: runner, tokenMap: tokenMap}
}

// Phonemize implements spec §4.3.2: CJK input yields an empty sequence;
// otherwise the raw IPA is cleaned, Gruut-US rewritten, wrapped with ^/$
// sentinels, and mapped through tokenMap. Unknown glyphs are skipped with a
// warning rather than aborting synthesis.
func (p *EnglishPhonemizer) Phonemize(ctx context.Context, input string) ([]int, error) {
	for _, r := range input {
		if text.IsCJK(r) {
			return nil, nil
		}
	}

	raw, err := p.runner.Run(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("english phonemize %q: %w", input, err)
	}

	cleaned := CleanRawIPA(raw)
	ipa := ApplyGruutUS(cleaned)

	symbols := append([]string{"^"}, text.Chars(ipa)...)
	symbols = append(symbols, "$")

	ids := make([]int, 0, len(symbols))
	for _, sym := range symbols {
		if sym == " " {
			continue
		}
		id, ok := p.tokenMap[sym]
		if !ok {
			slog.Warn("english phonemizer: unknown IPA glyph", "glyph", sym)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
