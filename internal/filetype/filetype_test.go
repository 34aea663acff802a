package filetype

import "testing"

func TestResolve_Categories(t *testing.T) {
	tests := []struct {
		name string
		want Category
	}{
		{"photo.jpg", CategoryImage},
		{"PHOTO.JPG", CategoryImage},
		{"scan.jpeg", CategoryImage},
		{"icon.png", CategoryImage},
		{"report.pdf", CategoryPDF},
		{"notes.txt", CategoryText},
		{"config.ini", CategoryText},
		{"server.log", CategoryText},
		{"talk.mp4", CategoryVideo},
		{"clip.webm", CategoryVideo},
		{"song.mp3", CategoryAudio},
		{"voice.flac", CategoryAudio},
		{"letter.docx", CategoryWord},
		{"sheet.xlsx", CategoryExcel},
		{"deck.pptx", CategoryPowerPoint},
		{"bundle.zip", CategoryArchive},
		{"data.tar.gz", CategoryArchive},
		{"binary.exe", CategoryOther},
		{"shot.svg", CategoryOther},
		{"noextension", CategoryOther},
		{".bashrc", CategoryOther},
		{"", CategoryOther},
	}

	for _, tt := range tests {
		if got := Resolve(tt.name); got != tt.want {
			t.Errorf("Resolve(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestResolve_OggIsVideo(t *testing.T) {
	// ogg carries both audio and video; classification picks video so the
	// player element can handle either stream.
	if got := Resolve("stream.ogg"); got != CategoryVideo {
		t.Errorf("Resolve(stream.ogg) = %s, want %s", got, CategoryVideo)
	}
}

func TestMIMEType(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"talk.mp4", "video/mp4"},
		{"clip.webm", "video/webm"},
		{"song.mp3", "audio/mpeg"},
		{"voice.wav", "audio/wav"},
		{"unknown.mov", "video/quicktime"},
	}

	for _, tt := range tests {
		if got := MIMEType(tt.name); got != tt.want {
			t.Errorf("MIMEType(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
}
