package speech

import "testing"

func TestTranslateCommand(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"cd ~/project", "First, change directory to your home directory/project."},
		{"cd /tmp", "First, change directory to /tmp."},
		{"cd", "First, change directory to your home directory."},
		{"ls", "Now, list the files in the directory."},
		{"$ ls -la", "Now, list the files in the directory."},
		{"lsblk", "Run the command: lsblk."},
		{"unzip archive.zip -d out", "Next, unzip the file named archive.zip."},
		{"unzip -q", "Run the command: unzip -q."},
		{"python3 -m venv .venv", "Create a virtual environment named .venv."},
		{"pip install -r requirements.txt", "Install the packages listed in requirements.txt with pip."},
		{"pip install requests flask", "Install requests and flask with pip."},
		{"source .venv/bin/activate", "Activate the virtual environment."},
		{". venv/bin/activate", "Activate the virtual environment."},
		{"make build", "Run the command: make build."},
		{"  % make build  ", "Run the command: make build."},
		{"   ", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := TranslateCommand(tt.line); got != tt.want {
				t.Errorf("TranslateCommand(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestPositional(t *testing.T) {
	got := positional("-o archive.zip --verbose out")
	want := []string{"archive.zip", "out"}
	if len(got) != len(want) {
		t.Fatalf("positional() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("positional()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
