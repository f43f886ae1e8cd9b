package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/rohits-web03/codedrop/internal/models"
	"github.com/rohits-web03/codedrop/internal/transfer"
)

func printUpload(w io.Writer, created *models.Transfer) {
	fmt.Fprintf(w, "Access code: %s\n", created.Code)
	fmt.Fprintf(w, "Files:       %d\n", created.FileCount)
	fmt.Fprintf(w, "Expires:     %s\n", created.ExpiresAt.Local().Format(time.RFC1123))
}

func printResolve(w io.Writer, found *models.Transfer, files []models.DownloadFile) {
	fmt.Fprintf(w, "Transfer %s expires %s\n", found.Code, found.ExpiresAt.Local().Format(time.RFC1123))
	if len(files) == 0 {
		fmt.Fprintln(w, "No downloadable files")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tURL")
	for _, f := range files {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Name, humanize.IBytes(uint64(f.Size)), f.URL)
	}
	_ = tw.Flush()
}

func printSweep(w io.Writer, report *transfer.SweepReport) {
	fmt.Fprintf(w, "Expired transfers: %d\n", report.Expired)
	fmt.Fprintf(w, "Swept:             %d\n", len(report.Swept))
	fmt.Fprintf(w, "Records deleted:   %d\n", report.RecordsDeleted)

	codes := make([]string, 0, len(report.Failed))
	for code := range report.Failed {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		fmt.Fprintf(w, "Failed %s: %v\n", code, report.Failed[code])
	}
}
