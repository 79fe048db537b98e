package manifest

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"ota-checker-go/internal"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/spf13/afero"
)

const (
	defaultConnectTimeout = 15 * time.Second
	defaultReadTimeout    = 10 * time.Second
)

// S3API is the part of the S3 client the fetcher uses.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Options configures a Fetcher.
type Options struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	UserAgent      string

	// S3 settings. Static keys win over S3Profile, a named profile from the
	// shared AWS config files. Without either the default credential chain is
	// used.
	S3Region          string
	S3Profile         string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3SessionToken    string

	// Fs serves file:// URLs and bare paths. Defaults to the OS filesystem.
	Fs afero.Fs
}

// Fetcher opens manifest and build URLs. It understands http(s)://,
// s3://bucket/key, file:// and bare filesystem paths.
type Fetcher struct {
	opts       Options
	httpClient *http.Client
	fs         afero.Fs

	s3Once   sync.Once
	s3Client S3API
	s3Err    error
}

// NewFetcher returns a Fetcher. The S3 client is created on first use.
func NewFetcher(opts Options) *Fetcher {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = defaultConnectTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultReadTimeout
	}
	if opts.S3Region == "" {
		opts.S3Region = "us-east-1"
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Fetcher{
		opts:       opts,
		httpClient: newHTTPClient(opts.ConnectTimeout, opts.ReadTimeout),
		fs:         fs,
	}
}

// WithS3Client makes the fetcher use client for s3:// URLs.
func (f *Fetcher) WithS3Client(client S3API) *Fetcher {
	f.s3Once.Do(func() {})
	f.s3Client = client
	f.s3Err = nil
	return f
}

// WithHTTPClient replaces the HTTP client.
func (f *Fetcher) WithHTTPClient(client *http.Client) *Fetcher {
	f.httpClient = client
	return f
}

func newHTTPClient(connectTimeout, readTimeout time.Duration) *http.Client {
	transport := cleanhttp.DefaultPooledTransport()
	transport.DialContext = (&net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = connectTimeout
	transport.ResponseHeaderTimeout = readTimeout
	return &http.Client{Transport: transport}
}

// Fetch opens rawURL for reading. The caller closes the returned reader.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("empty URL")
	}

	// C:\builds\ota.json would parse with scheme "c".
	if isDrivePath(rawURL) {
		return f.fetchFile(rawURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return f.fetchHTTP(ctx, rawURL)
	case "s3":
		return f.fetchS3(ctx, u)
	case "file":
		return f.fetchFile(u.Path)
	case "":
		return f.fetchFile(rawURL)
	default:
		return nil, fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
}

// isDrivePath reports whether s starts with a Windows drive letter.
func isDrivePath(s string) bool {
	if len(s) < 3 || s[1] != ':' || (s[2] != '\\' && s[2] != '/') {
		return false
	}
	c := s[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func (f *Fetcher) fetchHTTP(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	ctx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	internal.DebugPrint("downloadStatus: %d (%s)", resp.StatusCode, rawURL)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, rawURL)
	}
	return newIdleTimeoutBody(resp.Body, f.opts.ReadTimeout, cancel, rawURL), nil
}

// idleTimeoutBody cancels the request when a single Read blocks for longer
// than timeout. The transport only bounds the wait for response headers.
type idleTimeoutBody struct {
	body     io.ReadCloser
	timeout  time.Duration
	timer    *time.Timer
	cancel   context.CancelFunc
	timedOut atomic.Bool
	rawURL   string
}

func newIdleTimeoutBody(body io.ReadCloser, timeout time.Duration, cancel context.CancelFunc, rawURL string) *idleTimeoutBody {
	b := &idleTimeoutBody{body: body, timeout: timeout, cancel: cancel, rawURL: rawURL}
	b.timer = time.AfterFunc(timeout, func() {
		b.timedOut.Store(true)
		cancel()
	})
	b.timer.Stop()
	return b
}

func (b *idleTimeoutBody) Read(p []byte) (int, error) {
	b.timer.Reset(b.timeout)
	n, err := b.body.Read(p)
	b.timer.Stop()
	if err != nil && err != io.EOF && b.timedOut.Load() {
		return n, fmt.Errorf("read from %s timed out after %s: %w", b.rawURL, b.timeout, err)
	}
	return n, err
}

func (b *idleTimeoutBody) Close() error {
	b.timer.Stop()
	err := b.body.Close()
	b.cancel()
	return err
}

func (f *Fetcher) fetchS3(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("invalid S3 URL %q: want s3://bucket/key", u.String())
	}

	client, err := f.s3()
	if err != nil {
		return nil, err
	}

	resp, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch s3://%s/%s: %w", bucket, key, err)
	}
	internal.DebugPrint("Fetched s3://%s/%s", bucket, key)
	return resp.Body, nil
}

func (f *Fetcher) s3() (S3API, error) {
	f.s3Once.Do(func() {
		f.s3Client, f.s3Err = newS3Client(f.opts)
	})
	return f.s3Client, f.s3Err
}

// newS3Client builds an S3 client for the configured region.
func newS3Client(opts Options) (*s3.Client, error) {
	cfg, err := awsConfig(context.Background(), opts)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg), nil
}

// awsConfig resolves region and credentials: static keys, then the named
// shared profile, then the default chain.
func awsConfig(ctx context.Context, opts Options) (aws.Config, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.S3Region),
	}
	switch {
	case opts.S3AccessKeyID != "":
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.S3AccessKeyID, opts.S3SecretAccessKey, opts.S3SessionToken),
		))
	case opts.S3Profile != "":
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(opts.S3Profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to create AWS config: %w", err)
	}
	return cfg, nil
}

func (f *Fetcher) fetchFile(path string) (io.ReadCloser, error) {
	file, err := f.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return file, nil
}
