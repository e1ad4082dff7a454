// Package drive is a minimal Google Drive REST client covering what photo
// upload needs: find-or-create a folder, upload bytes, share read-only.
package drive

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultBaseURL   = "https://www.googleapis.com/drive/v3"
	defaultUploadURL = "https://www.googleapis.com/upload/drive/v3"
	defaultViewURL   = "https://drive.google.com/file/d"
	defaultTimeout   = 30 * time.Second

	folderMIMEType = "application/vnd.google-apps.folder"
)

// Client communicates with the Drive REST API.
type Client struct {
	token      string
	baseURL    string
	uploadURL  string
	viewURL    string
	httpClient *http.Client
}

// NewClient creates a Drive client with the given OAuth access token.
func NewClient(token string) *Client {
	return &Client{
		token:     token,
		baseURL:   defaultBaseURL,
		uploadURL: defaultUploadURL,
		viewURL:   defaultViewURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// NewClientWithBaseURLs creates a client pointing at custom endpoints
// (for testing).
func NewClientWithBaseURLs(token, baseURL, uploadURL string) *Client {
	c := NewClient(token)
	c.baseURL = strings.TrimRight(baseURL, "/")
	c.uploadURL = strings.TrimRight(uploadURL, "/")
	return c
}

type driveFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type fileList struct {
	Files []driveFile `json:"files"`
}

// EnsureFolder looks up a folder by exact name among non-trashed folders
// and creates it when none exists. Two concurrent first calls may each
// create a folder; lookup-then-upload is best effort, not transactional.
func (c *Client) EnsureFolder(ctx context.Context, name string) (string, error) {
	query := fmt.Sprintf("name='%s' and mimeType='%s' and trashed=false", name, folderMIMEType)

	var list fileList
	if err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/files?q="+url.QueryEscape(query), nil, &list); err != nil {
		return "", fmt.Errorf("searching for folder %q: %w", name, err)
	}
	if len(list.Files) > 0 {
		return list.Files[0].ID, nil
	}

	var created driveFile
	body := map[string]string{"name": name, "mimeType": folderMIMEType}
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/files", body, &created); err != nil {
		return "", fmt.Errorf("creating folder %q: %w", name, err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("creating folder %q: no id in response", name)
	}
	return created.ID, nil
}

// Upload stores data under fileName inside folderID using a
// multipart/related request with a base64 media part, and returns the new
// file's id.
func (c *Client) Upload(ctx context.Context, data []byte, mimeType, fileName, folderID string) (string, error) {
	metadata, err := json.Marshal(map[string]any{
		"name":    fileName,
		"parents": []string{folderID},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling file metadata: %w", err)
	}

	boundary := uuid.NewString()
	var body bytes.Buffer
	body.WriteString("--" + boundary + "\r\n")
	body.WriteString("Content-Type: application/json; charset=UTF-8\r\n\r\n")
	body.Write(metadata)
	body.WriteString("\r\n--" + boundary + "\r\n")
	body.WriteString("Content-Type: " + mimeType + "\r\n")
	body.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
	body.WriteString(base64.StdEncoding.EncodeToString(data))
	body.WriteString("\r\n--" + boundary + "--")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL+"/files?uploadType=multipart", &body)
	if err != nil {
		return "", fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "multipart/related; boundary="+boundary)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing upload: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading upload response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("upload returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var uploaded driveFile
	if err := json.Unmarshal(respBody, &uploaded); err != nil {
		return "", fmt.Errorf("decoding upload response: %w", err)
	}
	if uploaded.ID == "" {
		return "", fmt.Errorf("upload succeeded but no file id in response: %s", string(respBody))
	}
	return uploaded.ID, nil
}

// ShareReadOnly grants anyone-with-the-link read access so the view URL
// works without Drive authentication.
func (c *Client) ShareReadOnly(ctx context.Context, fileID string) error {
	body := map[string]string{"role": "reader", "type": "anyone"}
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/files/"+fileID+"/permissions", body, nil); err != nil {
		return fmt.Errorf("sharing file %s: %w", fileID, err)
	}
	return nil
}

// ViewURL returns the browser-viewable link for an uploaded file.
func (c *Client) ViewURL(fileID string) string {
	return c.viewURL + "/" + fileID + "/view"
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
