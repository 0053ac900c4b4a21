package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the API root used when no override is configured.
const DefaultBaseURL = "https://experiencia21.tec.mx/api/v1"

// userTimezone is the fixed local zone due dates are evaluated and
// displayed in.
const userTimezone = "America/Mexico_City"

const (
	// metadataTimeout bounds every call except the binary upload.
	metadataTimeout = 10 * time.Second
	// uploadTimeout bounds the stage-2 binary upload.
	uploadTimeout = 30 * time.Second
)

// Client talks to the Canvas REST API with a bearer token. The stage-2
// upload target is an independent, unauthenticated endpoint and goes
// through a separate HTTP client that attaches no bearer header.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	upload  *http.Client
	loc     *time.Location
	now     func() time.Time
	logger  *zap.Logger
}

// New creates a client for the API at baseURL. An empty baseURL selects
// DefaultBaseURL; a nil logger disables logging.
func New(baseURL, token string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := time.LoadLocation(userTimezone)
	if err != nil {
		// Zone database unavailable: fall back to the zone's standard offset.
		loc = time.FixedZone("CST", -6*60*60)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: metadataTimeout},
		upload:  &http.Client{Timeout: uploadTimeout},
		loc:     loc,
		now:     time.Now,
		logger:  logger,
	}
}

// Token returns the access token the client authenticates with.
func (c *Client) Token() string { return c.token }

// do issues an authenticated request against the API base URL and returns
// the raw response. Transport failures are logged and returned; they never
// escalate past the caller.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Response, error) {
	u := c.baseURL + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// getJSON issues a GET and decodes a 200 response into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode response: %w", path, err)
	}
	return nil
}

// ActiveUser checks token validity via GET users/self and returns the
// identity behind the token.
func (c *Client) ActiveUser(ctx context.Context) (User, error) {
	var user User
	if err := c.getJSON(ctx, "users/self", nil, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Courses lists the user's courses. Malformed entries and entries lacking
// a name are tolerated and dropped.
func (c *Client) Courses(ctx context.Context) ([]Course, error) {
	var raw []json.RawMessage
	if err := c.getJSON(ctx, "courses", nil, &raw); err != nil {
		return nil, err
	}

	courses := make([]Course, 0, len(raw))
	for _, entry := range raw {
		var course Course
		if err := json.Unmarshal(entry, &course); err != nil || course.Name == "" {
			continue
		}
		courses = append(courses, course)
	}
	return courses, nil
}

// Assignments lists the course's upcoming non-quiz assignments, submitted
// state derived from the bulk submission lookup, sorted ascending by due
// date with undated assignments last. The list is rebuilt on every call;
// nothing is cached across menu sessions.
func (c *Client) Assignments(ctx context.Context, courseID int64) ([]Assignment, error) {
	var all []Assignment
	path := fmt.Sprintf("courses/%d/assignments", courseID)
	if err := c.getJSON(ctx, path, nil, &all); err != nil {
		return nil, err
	}

	ids := make([]int64, len(all))
	for i, a := range all {
		ids[i] = a.ID
	}
	submissions, err := c.bulkSubmissions(ctx, courseID, ids)
	if err != nil {
		return nil, err
	}

	return FilterUpcoming(all, submissions, c.now().In(c.loc)), nil
}

// bulkSubmissions fetches the user's submission state for the given
// assignments in one call, keyed by assignment id.
func (c *Client) bulkSubmissions(ctx context.Context, courseID int64, assignmentIDs []int64) (map[int64]Submission, error) {
	query := url.Values{}
	query.Set("student_ids[]", "self")
	for _, id := range assignmentIDs {
		query.Add("assignment_ids[]", strconv.FormatInt(id, 10))
	}

	var list []Submission
	path := fmt.Sprintf("courses/%d/students/submissions", courseID)
	if err := c.getJSON(ctx, path, query, &list); err != nil {
		return nil, err
	}

	byAssignment := make(map[int64]Submission, len(list))
	for _, sub := range list {
		byAssignment[sub.AssignmentID] = sub
	}
	return byAssignment, nil
}
