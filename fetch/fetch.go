// Package fetch downloads the raw JetNet csv files from Zenodo. It
// implements the single capability the jets loader needs from its download
// collaborator: fetch raw bytes for a named dataset into a local path.
package fetch

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// DefaultRecordsURL is the Zenodo record listing the published jet csvs.
const DefaultRecordsURL = "https://zenodo.org/api/records/5502543"

// jetTypes are the datasets published under the Zenodo record.
var jetTypes = map[string]bool{"g": true, "t": true, "q": true}

// Client fetches jet csv files. The zero value is usable; it talks to the
// public Zenodo API with http.DefaultClient and renders a progress bar.
type Client struct {
	// RecordsURL overrides the Zenodo record endpoint (used by tests).
	RecordsURL string

	// HTTPClient overrides the HTTP client.
	HTTPClient *http.Client

	// Quiet suppresses the download progress bar.
	Quiet bool

	// Logger receives download progress. Defaults to a nop logger.
	Logger *zap.Logger
}

// Fetch resolves the download URL for jetType from the Zenodo record and
// streams the csv to dest. The write goes through a temp file so an
// interrupted download never leaves a partial csv for the loader to parse.
func (c *Client) Fetch(jetType, dest string) error {
	if !jetTypes[jetType] {
		return fmt.Errorf("fetch: unknown jet type %q (want g, t or q)", jetType)
	}
	log := c.Logger
	if log == nil {
		log = zap.NewNop()
	}

	fileURL, err := c.resolveFileURL(jetType)
	if err != nil {
		return err
	}
	log.Info("downloading jet csv", zap.String("jetType", jetType), zap.String("url", fileURL))

	resp, err := c.httpClient().Get(fileURL)
	if err != nil {
		return fmt.Errorf("fetch: downloading %s: %w", fileURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch: downloading %s: status %s", fileURL, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".tmp*")
	if err != nil {
		return fmt.Errorf("fetch: creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	var w io.Writer = tmp
	if !c.Quiet && resp.ContentLength > 0 {
		bar := progressbar.NewOptions(int(resp.ContentLength),
			progressbar.OptionSetBytes(int(resp.ContentLength)),
			progressbar.OptionSetDescription(jetType+"_jets.csv"))
		w = io.MultiWriter(tmp, bar)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("fetch: writing %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("fetch: closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("fetch: moving csv into place: %w", err)
	}
	return nil
}

// resolveFileURL looks up the download link for the jet type's csv in the
// Zenodo record JSON.
func (c *Client) resolveFileURL(jetType string) (string, error) {
	recordsURL := c.RecordsURL
	if recordsURL == "" {
		recordsURL = DefaultRecordsURL
	}

	resp, err := c.httpClient().Get(recordsURL)
	if err != nil {
		return "", fmt.Errorf("fetch: querying %s: %w", recordsURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch: querying %s: status %s", recordsURL, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("fetch: reading record: %w", err)
	}

	key := jetType + "_jets.csv"
	link := gjson.GetBytes(body, fmt.Sprintf(`files.#(key=="%s").links.self`, key))
	if !link.Exists() {
		return "", fmt.Errorf("fetch: record has no file %q", key)
	}
	return link.String(), nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
