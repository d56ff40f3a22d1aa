package model

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

func TestInitials(t *testing.T) {
	tests := map[string]string{
		"Sarah Anderson":      "SA",
		"  jane   de  vries ": "jdv",
		"Ørjan Ødegård":       "ØØ",
		"":                    "",
	}
	for name, want := range tests {
		if got := (CandidateProfile{Name: name}).Initials(); got != want {
			t.Errorf("Initials(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestNormalize_ClampsIndependently(t *testing.T) {
	a := Analysis{SelectionScore: 140, RiskScore: -3, Profile: CandidateProfile{YearsExperience: -1}}.Normalize()
	if a.SelectionScore != 100 || a.RiskScore != 0 || a.Profile.YearsExperience != 0 {
		t.Errorf("Normalize = %+v", a)
	}

	// no relation between the two scores is enforced
	b := Analysis{SelectionScore: 90, RiskScore: 90}.Normalize()
	if b.SelectionScore != 90 || b.RiskScore != 90 {
		t.Errorf("Normalize changed in-range scores: %+v", b)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := map[string]time.Duration{
		"":                              0,
		"7":                             7 * time.Second,
		"-2":                            0,
		"soon":                          0,
		"Wed, 21 Oct 2015 07:28:00 GMT": 0,
	}
	for in, want := range tests {
		if got := ParseRetryAfter(in); got != want {
			t.Errorf("ParseRetryAfter(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestHTTPError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := error(&HTTPError{StatusCode: 503, Err: inner})
	if !errors.Is(err, inner) {
		t.Error("HTTPError does not unwrap")
	}
	if err.Error() != "HTTP 503: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestMemoryFile_CopiesData(t *testing.T) {
	data := []byte("resume")
	f := NewMemoryFile("1", "cv.txt", data)
	data[0] = 'X'

	rc, err := f.Open(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "resume" || f.Size != 6 {
		t.Errorf("content = %q size = %d", got, f.Size)
	}
}

func TestUploadedFile_OpenWithoutOpener(t *testing.T) {
	if _, err := (UploadedFile{ID: "x"}).Open(context.Background()); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("err = %v", err)
	}
}

func TestFindJob(t *testing.T) {
	jobs := []JobDescription{{ID: "1", Title: "A"}, {ID: "2", Title: "B"}}
	if j, ok := FindJob(jobs, "2"); !ok || j.Title != "B" {
		t.Errorf("FindJob(2) = %+v, %v", j, ok)
	}
	if _, ok := FindJob(jobs, "9"); ok {
		t.Error("FindJob(9) found a job")
	}
}
