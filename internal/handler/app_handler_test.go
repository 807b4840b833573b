package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validSubmission() AppSubmission {
	return AppSubmission{
		Name:        "Summarize",
		Description: "Summarizes long documents into bullet points",
		Version:     "1.0.0",
		Category:    "ai-ml",
		Permissions: []string{"api-access"},
	}
}

func TestAppSubmissionValid(t *testing.T) {
	s := validSubmission()
	assert.Empty(t, s.Validate())
}

func TestAppSubmissionViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppSubmission)
		want   string
	}{
		{
			name:   "short name",
			mutate: func(s *AppSubmission) { s.Name = "ab" },
			want:   "app name must be at least 3 characters",
		},
		{
			name:   "short description",
			mutate: func(s *AppSubmission) { s.Description = "too short" },
			want:   "app description must be at least 10 characters",
		},
		{
			name:   "bad version",
			mutate: func(s *AppSubmission) { s.Version = "1.0" },
			want:   "app version must follow semantic versioning (x.y.z)",
		},
		{
			name:   "version with suffix",
			mutate: func(s *AppSubmission) { s.Version = "1.0.0-beta" },
			want:   "app version must follow semantic versioning (x.y.z)",
		},
		{
			name:   "unknown category",
			mutate: func(s *AppSubmission) { s.Category = "games" },
			want:   "unknown category 'games'",
		},
		{
			name:   "unknown permission",
			mutate: func(s *AppSubmission) { s.Permissions = []string{"api-access", "root"} },
			want:   "unknown permission 'root'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSubmission()
			tt.mutate(&s)
			assert.Contains(t, s.Validate(), tt.want)
		})
	}
}

func TestAppSubmissionCollectsAllViolations(t *testing.T) {
	s := AppSubmission{
		Name:        "x",
		Description: "y",
		Version:     "latest",
		Category:    "nope",
		Permissions: []string{"everything"},
	}
	assert.Len(t, s.Validate(), 5)
}

func TestAppSubmissionNoPermissionsIsValid(t *testing.T) {
	s := validSubmission()
	s.Permissions = nil
	assert.Empty(t, s.Validate())
}
