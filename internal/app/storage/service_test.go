package storage

import (
	"testing"

	"educonnect/internal/pkg/errs"
)

// TestValidateFileSize covers the upload size limits.
func TestValidateFileSize(t *testing.T) {
	cases := []struct {
		name     string
		size     int64
		wantCode int
	}{
		{"valid size", 1024, 0},
		{"at limit", MaxUploadSize, 0},
		{"zero", 0, errs.ErrInvalidParams},
		{"negative", -1, errs.ErrInvalidParams},
		{"over limit", MaxUploadSize + 1, errs.ErrFileSizeTooLarge},
	}

	for _, tc := range cases {
		customErr := ValidateFileSize(tc.size)
		switch {
		case tc.wantCode == 0 && customErr != nil:
			t.Errorf("%s: unexpected error %+v", tc.name, customErr)
		case tc.wantCode != 0 && (customErr == nil || customErr.Code != tc.wantCode):
			t.Errorf("%s: expected code %d, got %+v", tc.name, tc.wantCode, customErr)
		}
	}
}

// TestValidateFileType verifies extension and MIME type must both be allowed
// and agree with each other.
func TestValidateFileType(t *testing.T) {
	cases := []struct {
		name     string
		fileName string
		mimeType string
		wantOK   bool
	}{
		{"jpeg", "photo.jpg", "image/jpeg", true},
		{"jpeg uppercase mime", "photo.jpeg", "IMAGE/JPEG", true},
		{"png", "avatar.png", "image/png", true},
		{"pdf material", "syllabus.pdf", "application/pdf", true},
		{"disallowed mime", "script.sh", "application/x-sh", false},
		{"mime extension mismatch", "photo.png", "image/jpeg", false},
		{"no extension", "photo", "image/jpeg", false},
		{"unknown extension", "archive.rar", "image/jpeg", false},
	}

	for _, tc := range cases {
		customErr := ValidateFileType(tc.fileName, tc.mimeType)
		if tc.wantOK && customErr != nil {
			t.Errorf("%s: unexpected error %+v", tc.name, customErr)
		}
		if !tc.wantOK && customErr == nil {
			t.Errorf("%s: expected rejection, got nil", tc.name)
		}
	}
}
