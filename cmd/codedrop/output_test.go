package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rohits-web03/codedrop/internal/models"
	"github.com/rohits-web03/codedrop/internal/transfer"
)

func TestPrintResolve(t *testing.T) {
	var buf bytes.Buffer
	found := &models.Transfer{Code: "AB12CD", ExpiresAt: time.Date(2024, 1, 16, 10, 30, 0, 0, time.UTC)}
	printResolve(&buf, found, []models.DownloadFile{
		{Name: "video.mp4", URL: "https://files.example/video", Size: 25 << 20},
		{Name: "notes.txt", URL: "https://files.example/notes", Size: 1024},
	})

	out := buf.String()
	assert.Contains(t, out, "Transfer AB12CD")
	assert.Contains(t, out, "25 MiB")
	assert.Contains(t, out, "1.0 KiB")
	assert.Contains(t, out, "https://files.example/notes")
}

func TestPrintResolve_NoFiles(t *testing.T) {
	var buf bytes.Buffer
	printResolve(&buf, &models.Transfer{Code: "AB12CD"}, nil)
	assert.Contains(t, buf.String(), "No downloadable files")
}

func TestPrintSweep(t *testing.T) {
	var buf bytes.Buffer
	printSweep(&buf, &transfer.SweepReport{
		Expired:        3,
		Swept:          []string{"AAAAAA", "BBBBBB"},
		Failed:         map[string]error{"CCCCCC": errors.New("access denied")},
		RecordsDeleted: 2,
	})

	out := buf.String()
	assert.Contains(t, out, "Expired transfers: 3")
	assert.Contains(t, out, "Swept:             2")
	assert.Contains(t, out, "Failed CCCCCC: access denied")
}
