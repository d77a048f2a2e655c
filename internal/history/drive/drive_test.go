package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueries(t *testing.T) {
	type testCase struct {
		name string
		got  string
		want string
	}

	tests := []testCase{
		{
			name: "Folder",
			got:  folderQuery(DefaultFolder),
			want: "name = 'CierresPro_Data' and mimeType = 'application/vnd.google-apps.folder' and trashed = false",
		},
		{
			name: "File in folder",
			got:  fileQuery("CierresPro_Backup.json", "abc123"),
			want: "name = 'CierresPro_Backup.json' and 'abc123' in parents and trashed = false",
		},
		{
			name: "Quotes escaped",
			got:  folderQuery(`Cierres d'Oviedo\2024`),
			want: `name = 'Cierres d\'Oviedo\\2024' and mimeType = 'application/vnd.google-apps.folder' and trashed = false`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestNewWithService_Defaults(t *testing.T) {
	s := NewWithService(nil, Config{})

	assert.Equal(t, DefaultFolder, s.folder)
	assert.Equal(t, "CierresPro_Backup.json", s.file)
}
