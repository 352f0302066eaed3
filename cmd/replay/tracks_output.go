package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"replay/internal/store"
)

var trackTableHeaders = []string{"Played At", "Title", "Artist", "Album", "Pop", "Genres"}

func trackTableRow(row store.TrackWithEnrichment) []string {
	popularity := "-"
	genres := "-"
	if row.Enrichment != nil {
		popularity = strconv.Itoa(row.Enrichment.Popularity)
		if len(row.Enrichment.Genres) > 0 {
			genres = strings.Join(row.Enrichment.Genres, ", ")
		} else {
			genres = ""
		}
	}
	return []string{
		row.PlayedAt.Local().Format("2006-01-02 15:04"),
		row.Title,
		row.Artist,
		row.Album,
		popularity,
		genres,
	}
}

// printTracks renders the joined recent-history view: a rounded table on a
// terminal, tab-separated rows when piped.
func printTracks(out io.Writer, tracks []store.TrackWithEnrichment) {
	if len(tracks) == 0 {
		fmt.Fprintln(out, "No tracks recorded yet.")
		return
	}

	rows := make([][]string, 0, len(tracks))
	for _, track := range tracks {
		rows = append(rows, trackTableRow(track))
	}

	if shouldRenderPretty(out) {
		aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft}
		fmt.Fprintln(out, renderTable(trackTableHeaders, rows, aligns))
		return
	}
	for _, row := range rows {
		fmt.Fprintln(out, strings.Join(row, "\t"))
	}
}
