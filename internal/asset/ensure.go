package asset

import (
	"context"
	"fmt"
	"net/http"
)

// MatchaLang identifies which Matcha variant's asset directory to resolve
// (spec §6 cache layout directory names).
type MatchaLang int

const (
	MatchaZh MatchaLang = iota
	MatchaEn
	MatchaZhEn
)

func (l MatchaLang) dirName() string {
	switch l {
	case MatchaZh:
		return "matcha-icefall-zh-baker"
	case MatchaEn:
		return "matcha-icefall-en_US-ljspeech"
	case MatchaZhEn:
		return "matcha-icefall-zh-en"
	default:
		return ""
	}
}

// acousticCheckFile is the file whose presence marks a Matcha model
// directory as already fetched.
const acousticCheckFile = "model-steps-3.onnx"

// EnsureMatchaAssets makes sure <cache_root>/matcha-tts/<lang dir> exists,
// fetching and extracting baseURL+"/"+<lang dir>+".tar.gz" if it doesn't
// and baseURL is non-empty. An empty baseURL with a missing directory
// returns ErrAssetMissing, leaving acquisition to the caller (e.g. an
// operator-run download step) rather than silently failing in a way that's
// hard to diagnose.
func EnsureMatchaAssets(ctx context.Context, client *http.Client, cacheRoot string, lang MatchaLang, baseURL string) (string, error) {
	dirName := lang.dirName()
	if dirName == "" {
		return "", fmt.Errorf("asset: unknown matcha lang %d", lang)
	}

	modelDir := MatchaModelDir(cacheRoot, dirName)
	var url string
	if baseURL != "" {
		url = fmt.Sprintf("%s/%s.tar.gz", baseURL, dirName)
	}

	return EnsurePresent(ctx, client, Source{
		URL:       url,
		IsArchive: true,
		DestPath:  modelDir,
		CheckFile: modelDir + "/" + acousticCheckFile,
	})
}

// EnsureVocoder makes sure <cache_root>/matcha-tts/<filename> exists,
// fetching baseURL+"/"+filename if it doesn't and baseURL is non-empty.
func EnsureVocoder(ctx context.Context, client *http.Client, cacheRoot, filename, baseURL string) (string, error) {
	dest := VocoderPath(cacheRoot, filename)
	var url string
	if baseURL != "" {
		url = fmt.Sprintf("%s/%s", baseURL, filename)
	}
	return EnsurePresent(ctx, client, Source{URL: url, DestPath: dest})
}

// EnsureKokoroAssets makes sure <cache_root>/kokoro-tts/kokoro-v1.0.onnx
// exists, fetching baseURL+"/kokoro-v1.0.onnx" if it doesn't and baseURL is
// non-empty.
func EnsureKokoroAssets(ctx context.Context, client *http.Client, cacheRoot, baseURL string) (string, error) {
	dest := KokoroModelPath(cacheRoot)
	var url string
	if baseURL != "" {
		url = fmt.Sprintf("%s/kokoro-v1.0.onnx", baseURL)
	}
	return EnsurePresent(ctx, client, Source{URL: url, DestPath: dest})
}

// EnsureKokoroVoice makes sure <cache_root>/kokoro-tts/voices/<name>.bin
// exists, fetching baseURL+"/voices/"+name+".bin" if it doesn't and baseURL
// is non-empty.
func EnsureKokoroVoice(ctx context.Context, client *http.Client, cacheRoot, name, baseURL string) (string, error) {
	dest := KokoroVoicePath(cacheRoot, name)
	var url string
	if baseURL != "" {
		url = fmt.Sprintf("%s/voices/%s.bin", baseURL, name)
	}
	return EnsurePresent(ctx, client, Source{URL: url, DestPath: dest})
}
