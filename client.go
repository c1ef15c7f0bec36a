package gsheets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"go.alis.build/gsheets/alog"
	"go.alis.build/gsheets/retry"
	"google.golang.org/api/option"
)

// Client opens and creates spreadsheets. It keeps one Spreadsheet per key, so every handle to a
// worksheet shares that worksheet's snapshot.
type Client struct {
	sheets    SheetsService
	drive     DriveService
	log       *alog.Logger
	exec      *retry.Executor
	driveExec *retry.Executor

	open   map[string]*Spreadsheet
	active *Spreadsheet
}

// Options for the NewClient method.
type Options struct {
	Logger        *alog.Logger
	Policy        *retry.Policy
	DrivePolicy   *retry.Policy
	Sleeper       func(time.Duration)
	ClientOptions []option.ClientOption
}

// Option is a functional option for the NewClient method.
type Option func(*Options)

// WithLogger sets the logger handed to the client and its retry executors.
func WithLogger(l *alog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = l
	}
}

// WithPolicy sets the retry policy of Sheets calls. Defaults to retry.DefaultPolicy.
func WithPolicy(p *retry.Policy) Option {
	return func(opts *Options) {
		opts.Policy = p
	}
}

// WithDrivePolicy sets the retry policy of Drive calls. Defaults to retry.DrivePolicy.
func WithDrivePolicy(p *retry.Policy) Option {
	return func(opts *Options) {
		opts.DrivePolicy = p
	}
}

// WithSleeper replaces time.Sleep between retry attempts.
func WithSleeper(sleep func(time.Duration)) Option {
	return func(opts *Options) {
		opts.Sleeper = sleep
	}
}

// WithClientOptions passes options, such as credentials, to the Google API clients built by
// NewClient.
func WithClientOptions(o ...option.ClientOption) Option {
	return func(opts *Options) {
		opts.ClientOptions = append(opts.ClientOptions, o...)
	}
}

// NewClient creates a Client over the Google Sheets and Drive APIs.
func NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	options := buildOptions(opts)
	s, d, err := NewGoogleServices(ctx, options.ClientOptions...)
	if err != nil {
		return nil, err
	}
	return newClient(s, d, options), nil
}

// NewClientWithServices creates a Client over the given collaborators.
func NewClientWithServices(s SheetsService, d DriveService, opts ...Option) *Client {
	return newClient(s, d, buildOptions(opts))
}

func buildOptions(opts []Option) *Options {
	options := &Options{
		Policy:      retry.DefaultPolicy(),
		DrivePolicy: retry.DrivePolicy(),
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

func newClient(s SheetsService, d DriveService, options *Options) *Client {
	execOpts := []retry.ExecutorOption{retry.WithLogger(options.Logger)}
	if options.Sleeper != nil {
		execOpts = append(execOpts, retry.WithSleeper(options.Sleeper))
	}
	return &Client{
		sheets:    s,
		drive:     d,
		log:       options.Logger,
		exec:      retry.NewExecutor(options.Policy, execOpts...),
		driveExec: retry.NewExecutor(options.DrivePolicy, execOpts...),
		open:      map[string]*Spreadsheet{},
	}
}

// Active returns the spreadsheet opened or created last, or nil.
func (c *Client) Active() *Spreadsheet { return c.active }

// OpenRequest identifies a spreadsheet by exactly one of its title, URL or key.
type OpenRequest struct {
	Title string
	URL   string
	Key   string
}

var keyFromURL = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// Create creates an empty spreadsheet. Its first worksheet is active.
func (c *Client) Create(ctx context.Context, title string) (*Spreadsheet, error) {
	resp, err := retry.Do(ctx, c.exec, func(ctx context.Context) (*spreadsheetMeta, error) {
		s, err := c.sheets.CreateSpreadsheet(ctx, title)
		if err != nil {
			return nil, err
		}
		return metaFromAPI(s), nil
	})
	if err != nil {
		return nil, fmt.Errorf("create spreadsheet %q: %w", title, err)
	}
	c.log.Infof(ctx, "created spreadsheet %s (%s)", resp.title, resp.id)
	return c.activate(resp), nil
}

// Open opens a spreadsheet by title, URL or key and activates its first worksheet.
func (c *Client) Open(ctx context.Context, req OpenRequest) (*Spreadsheet, error) {
	set := 0
	for _, v := range []string{req.Title, req.URL, req.Key} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("%w: open requires exactly one of title, url or key", ErrInvalidArgument)
	}

	key := req.Key
	switch {
	case req.URL != "":
		m := keyFromURL.FindStringSubmatch(req.URL)
		if m == nil {
			return nil, fmt.Errorf("%w: no spreadsheet key in url %q", ErrInvalidArgument, req.URL)
		}
		key = m[1]
	case req.Title != "":
		id, err := retry.Do(ctx, c.driveExec, func(ctx context.Context) (string, error) {
			return c.drive.FindSpreadsheet(ctx, req.Title)
		})
		if err != nil {
			return nil, fmt.Errorf("open spreadsheet %q: %w", req.Title, err)
		}
		key = id
	}
	return c.OpenByKey(ctx, key)
}

// OpenByKey opens a spreadsheet by its key and activates its first worksheet.
func (c *Client) OpenByKey(ctx context.Context, key string) (*Spreadsheet, error) {
	meta, err := c.fetchMeta(ctx, key)
	if err != nil {
		if isNotFound(err) {
			return nil, notFound(fmt.Sprintf("spreadsheet %s", key), err)
		}
		return nil, fmt.Errorf("open spreadsheet %s: %w", key, err)
	}
	c.log.Infof(ctx, "opened spreadsheet %s (%s)", meta.title, meta.id)
	return c.activate(meta), nil
}

// Import uploads r, converting it from mimeType into a new spreadsheet, and opens it.
func (c *Client) Import(ctx context.Context, r io.Reader, title, mimeType string) (*Spreadsheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("import %q: %w", title, err)
	}
	id, err := retry.Do(ctx, c.driveExec, func(ctx context.Context) (string, error) {
		return c.drive.Upload(ctx, bytes.NewReader(data), title, mimeType)
	})
	if err != nil {
		return nil, fmt.Errorf("import %q: %w", title, err)
	}
	c.log.Infof(ctx, "imported %q as %s (%d bytes)", title, id, len(data))
	return c.OpenByKey(ctx, id)
}

// DeleteFile deletes any Drive file by ID, for example a previous import.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	err := c.driveExec.Execute(ctx, func(ctx context.Context) error {
		return c.drive.DeleteFile(ctx, fileID)
	})
	if err != nil {
		return fmt.Errorf("delete file %s: %w", fileID, err)
	}
	c.log.Infof(ctx, "deleted file %s", fileID)
	return nil
}

func (c *Client) fetchMeta(ctx context.Context, key string) (*spreadsheetMeta, error) {
	return retry.Do(ctx, c.exec, func(ctx context.Context) (*spreadsheetMeta, error) {
		s, err := c.sheets.GetSpreadsheet(ctx, key, nil, metadataFields)
		if err != nil {
			return nil, err
		}
		return metaFromAPI(s), nil
	})
}

// activate makes the spreadsheet of meta the active one, reusing the Spreadsheet already open for
// its key, and activates its first worksheet. The snapshots of the outgoing spreadsheet are closed.
func (c *Client) activate(meta *spreadsheetMeta) *Spreadsheet {
	ss, ok := c.open[meta.id]
	if !ok {
		ss = &Spreadsheet{client: c, id: meta.id, worksheets: map[int64]*Worksheet{}}
		c.open[meta.id] = ss
	}
	ss.title = meta.title
	all := ss.sync(meta.sheets)
	if c.active != nil && c.active != ss {
		c.active.closeSnapshots()
	}
	c.active = ss
	var first *Worksheet
	if len(all) > 0 {
		first = all[0]
	}
	ss.setActive(first)
	return ss
}

// forget drops a deleted spreadsheet.
func (c *Client) forget(ss *Spreadsheet) {
	delete(c.open, ss.id)
	if c.active == ss {
		c.active = nil
	}
}

// sheetRange prefixes label with the quoted sheet title. An empty label selects the whole sheet.
func sheetRange(title, label string) string {
	quoted := "'" + strings.ReplaceAll(title, "'", "''") + "'"
	if label == "" {
		return quoted
	}
	return quoted + "!" + label
}
