package ytdlp

import (
	"errors"
	"strings"
	"testing"
)

func TestClassify_UnsupportedURL(t *testing.T) {
	err := classify("probe", "ERROR: Unsupported URL: https://example.com/page", errors.New("exit status 1"))
	if !errors.Is(err, ErrUnsupportedURL) {
		t.Fatalf("classify() = %v, want ErrUnsupportedURL", err)
	}
}

func TestClassify_AccessDenied(t *testing.T) {
	for _, stderr := range []string{
		"ERROR: Private video. Sign in if you've been granted access",
		"ERROR: Login required to view this video",
	} {
		err := classify("probe", stderr, errors.New("exit status 1"))
		if !errors.Is(err, ErrAccessDenied) {
			t.Fatalf("classify(%q) = %v, want ErrAccessDenied", stderr, err)
		}
	}
}

func TestClassify_GenericExtractionError(t *testing.T) {
	base := errors.New("exit status 1")
	err := classify("fetch", "ERROR: something exploded", base)

	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("classify() = %T, want *ExtractionError", err)
	}
	if extractErr.Op != "fetch" {
		t.Fatalf("Op = %q, want fetch", extractErr.Op)
	}
	if !errors.Is(err, base) {
		t.Fatal("ExtractionError does not unwrap to the exec error")
	}
	if !strings.Contains(err.Error(), "something exploded") {
		t.Fatalf("Error() = %q, missing stderr text", err.Error())
	}
}

func TestClassify_TruncatesLongOutput(t *testing.T) {
	long := strings.Repeat("x", 2000) + " tail"
	err := classify("fetch", long, errors.New("exit status 1"))

	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("classify() = %T, want *ExtractionError", err)
	}
	if len(extractErr.Output) > maxErrOutput {
		t.Fatalf("output length = %d, want <= %d", len(extractErr.Output), maxErrOutput)
	}
	if !strings.HasSuffix(extractErr.Output, "tail") {
		t.Fatal("truncation should keep the tail of stderr")
	}
}
