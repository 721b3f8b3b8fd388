package github

import "testing"

func TestExtractTaskRef(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantProject string
		wantTask    string
		wantOK      bool
	}{
		{
			name:        "plain https URL",
			body:        "See https://app.asana.com/0/123/456 for details",
			wantProject: "123",
			wantTask:    "456",
			wantOK:      true,
		},
		{
			name:        "http URL",
			body:        "task: http://app.asana.com/0/111222/333444",
			wantProject: "111222",
			wantTask:    "333444",
			wantOK:      true,
		},
		{
			name:        "first match wins",
			body:        "https://app.asana.com/0/1/2 and https://app.asana.com/0/3/4",
			wantProject: "1",
			wantTask:    "2",
			wantOK:      true,
		},
		{
			name:        "URL embedded in markdown link",
			body:        "Fixes [task](https://app.asana.com/0/98765/43210).",
			wantProject: "98765",
			wantTask:    "43210",
			wantOK:      true,
		},
		{
			name:   "no URL",
			body:   "Just a regular PR description",
			wantOK: false,
		},
		{
			name:   "empty body",
			body:   "",
			wantOK: false,
		},
		{
			name:   "asana URL without ids",
			body:   "https://app.asana.com/0//",
			wantOK: false,
		},
		{
			name:   "unrelated asana URL shape",
			body:   "https://app.asana.com/1/123/456",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, ok := ExtractTaskRef(tt.body)
			if ok != tt.wantOK {
				t.Fatalf("ExtractTaskRef() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if ref.ProjectGID != tt.wantProject {
				t.Errorf("ProjectGID = %q, want %q", ref.ProjectGID, tt.wantProject)
			}
			if ref.TaskGID != tt.wantTask {
				t.Errorf("TaskGID = %q, want %q", ref.TaskGID, tt.wantTask)
			}
		})
	}
}
