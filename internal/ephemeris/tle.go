package ephemeris

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// TLE is one two-line element set plus the name line that precedes it
// in CelesTrak group files.
type TLE struct {
	Name    string
	NoradID int
	Line1   string
	Line2   string
}

// ParseTLEs reads three-line TLE groups (name, line 1, line 2) from r.
// Trailing partial groups and blank lines are skipped; a group whose
// NORAD field does not parse is reported with its name.
func ParseTLEs(r io.Reader) ([]TLE, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n ")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read tle data: %w", err)
	}

	var sets []TLE
	for i := 0; i+2 < len(lines); i += 3 {
		name := strings.TrimSpace(lines[i])
		line1 := lines[i+1]
		line2 := lines[i+2]

		if len(line1) < 7 || !strings.HasPrefix(line1, "1 ") || !strings.HasPrefix(line2, "2 ") {
			return nil, fmt.Errorf("malformed tle group for %q", name)
		}

		// NORAD catalog number occupies columns 3-7 of line 1.
		norad, err := strconv.Atoi(strings.TrimSpace(line1[2:7]))
		if err != nil {
			return nil, fmt.Errorf("tle %q: bad catalog number: %w", name, err)
		}

		sets = append(sets, TLE{
			Name:    name,
			NoradID: norad,
			Line1:   line1,
			Line2:   line2,
		})
	}
	return sets, nil
}

// CelesTrakClient downloads TLE group files from CelesTrak.
type CelesTrakClient struct {
	baseURL string
	http    *http.Client
}

// NewCelesTrakClient builds a client for the given base URL.
func NewCelesTrakClient(baseURL string, timeout time.Duration) *CelesTrakClient {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &CelesTrakClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchGroup downloads and parses one named TLE group (for example
// "stations" or "starlink").
func (c *CelesTrakClient) FetchGroup(ctx context.Context, group string) ([]TLE, error) {
	url := fmt.Sprintf("%s?GROUP=%s&FORMAT=tle", c.baseURL, group)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("celestrak request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("celestrak fetch %q: %w", group, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("celestrak group %q: status %d", group, resp.StatusCode)
	}

	sets, err := ParseTLEs(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("celestrak group %q: %w", group, err)
	}
	return sets, nil
}
