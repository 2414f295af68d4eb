// package formatter provides functions to export movie lists to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/shared"
)

// ExportToCSV converts a movie list to CSV format with columns: ID, Title, Release Date, Rating, Poster
func ExportToCSV(title string, movies []models.Movie) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Release Date", "Rating", "Poster"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, movie := range movies {
		record := []string{
			strconv.Itoa(movie.ID),
			movie.Title,
			movie.ReleaseDate,
			strconv.FormatFloat(movie.VoteAverage, 'f', 1, 64),
			movie.PosterPath,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a movie list to Markdown format
func ExportToMarkdown(title string, movies []models.Movie) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Movies**: %d\n\n", len(movies)))

	buf.WriteString("## Movies\n\n")
	for i, movie := range movies {
		yearPart := ""
		if year := movie.Year(); year != "" {
			yearPart = fmt.Sprintf(" (%s)", year)
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s [%.1f/10]\n", i+1, movie.Title, yearPart, movie.VoteAverage))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a movie list to plain text format
func ExportToText(title string, movies []models.Movie) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("List: %s\n", title))
	buf.WriteString(fmt.Sprintf("Movies: %d\n\n", len(movies)))

	for i, movie := range movies {
		buf.WriteString(fmt.Sprintf("%d. %s - %.1f/10\n", i+1, movie.Title, movie.VoteAverage))
	}

	return buf.Bytes(), nil
}

// ToJSON generates a pretty JSON representation of a movie list
func ToJSON(movies []models.Movie) ([]byte, error) {
	return shared.MarshalJSON(movies, true)
}

// Export renders movies in the named format: json, csv, markdown, or txt.
func Export(format, title string, movies []models.Movie) ([]byte, error) {
	switch format {
	case "json", "":
		return ToJSON(movies)
	case "csv":
		return ExportToCSV(title, movies)
	case "markdown", "md":
		return ExportToMarkdown(title, movies)
	case "txt", "text":
		return ExportToText(title, movies)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// WriteExport renders movies in the named format and writes them to path.
func WriteExport(format, title, path string, movies []models.Movie) error {
	data, err := Export(format, title, movies)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}
