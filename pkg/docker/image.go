package docker

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// errNoBuildContext reports a build attempted without a context
// directory to package.
var errNoBuildContext = errors.New("no build context directory")

// HeaderRegistryAuth carries base64-encoded registry credentials on pull,
// push and service create requests. Exported so callers relaying an
// inbound request can copy the header through unchanged.
const HeaderRegistryAuth = "X-Registry-Auth"

// Images builds requests for the image family of endpoints.
//
// API reference: https://docs.docker.com/engine/api/v1.41/#tag/Image
type Images struct {
	endpoint Endpoint
}

// List builds GET /images/json.
func (i Images) List(opts *ImageListOptions) (*Request, error) {
	return newRequest(i.endpoint, http.MethodGet, withQuery("/images/json", opts), nil)
}

// Build packages the options' source directory into a tar archive and
// builds POST /build with it as the request body. This is the one
// operation that touches the filesystem before the request exists.
func (i Images) Build(opts *BuildOptions) (*Request, error) {
	if opts == nil {
		return nil, &RequestBuildError{Path: "/build", Err: errNoBuildContext}
	}
	var archive bytes.Buffer
	if err := tarDir(&archive, opts.contextDir); err != nil {
		return nil, &RequestBuildError{Path: "/build", Err: err}
	}
	return newRequest(i.endpoint, http.MethodPost, withQuery("/build", opts), TarPayload(&archive))
}

// BuildFrom builds POST /build with an already tarred context stream.
// The options' source directory, if any, is ignored.
func (i Images) BuildFrom(opts *BuildOptions, context io.Reader) (*Request, error) {
	return newRequest(i.endpoint, http.MethodPost, withQuery("/build", opts), TarPayload(context))
}

// Pull builds POST /images/create. Credentials on the options travel in
// the X-Registry-Auth header, never in the URL.
func (i Images) Pull(opts *PullOptions) (*Request, error) {
	var headers []Header
	if opts != nil && opts.auth != nil {
		encoded, err := opts.auth.Encode()
		if err != nil {
			return nil, &RequestBuildError{Path: "/images/create", Err: err}
		}
		headers = append(headers, Header{Name: HeaderRegistryAuth, Value: encoded})
	}
	return newRequest(i.endpoint, http.MethodPost, withQuery("/images/create", opts), nil, headers...)
}

// Search builds GET /images/search for the given term.
func (i Images) Search(term string) (*Request, error) {
	return newRequest(i.endpoint, http.MethodGet, "/images/search?term="+url.QueryEscape(term), nil)
}

// ExportAll builds GET /images/get for a set of images, each by name,
// name:tag or id. The response is a single tarball.
func (i Images) ExportAll(names []string) (*Request, error) {
	v := url.Values{}
	for _, n := range names {
		v.Add("names", n)
	}
	return newRequest(i.endpoint, http.MethodGet, "/images/get?"+v.Encode(), nil)
}

// Import builds POST /images/load from a tarball stream. The archive may
// be uncompressed or compressed with gzip, bzip2 or xz; the daemon
// detects the format.
func (i Images) Import(tarball io.Reader) (*Request, error) {
	return newRequest(i.endpoint, http.MethodPost, "/images/load", TarPayload(tarball))
}

// Get returns the operations scoped to one image.
func (i Images) Get(name string) Image {
	return Image{endpoint: i.endpoint, name: name}
}

// Image builds requests against a single named image.
type Image struct {
	endpoint Endpoint
	name     string
}

// Name returns the image reference this handle is scoped to.
func (i Image) Name() string { return i.name }

func (i Image) path(suffix string) string {
	return "/images/" + url.PathEscape(i.name) + suffix
}

// Inspect builds GET /images/{name}/json.
func (i Image) Inspect() (*Request, error) {
	return newRequest(i.endpoint, http.MethodGet, i.path("/json"), nil)
}

// History builds GET /images/{name}/history.
func (i Image) History() (*Request, error) {
	return newRequest(i.endpoint, http.MethodGet, i.path("/history"), nil)
}

// Export builds GET /images/{name}/get. The response is a tarball.
func (i Image) Export() (*Request, error) {
	return newRequest(i.endpoint, http.MethodGet, i.path("/get"), nil)
}

// Tag builds POST /images/{name}/tag.
func (i Image) Tag(opts *TagOptions) (*Request, error) {
	return newRequest(i.endpoint, http.MethodPost, withQuery(i.path("/tag"), opts), nil)
}

// Push builds POST /images/{name}/push. The Engine requires the auth
// header on push even for anonymous registries.
func (i Image) Push(opts *PushOptions) (*Request, error) {
	auth := RegistryAuth{}
	if opts != nil && opts.auth != nil {
		auth = *opts.auth
	}
	encoded, err := auth.Encode()
	if err != nil {
		return nil, &RequestBuildError{Path: i.path("/push"), Err: err}
	}
	header := Header{Name: HeaderRegistryAuth, Value: encoded}
	return newRequest(i.endpoint, http.MethodPost, withQuery(i.path("/push"), opts), nil, header)
}

// Delete builds DELETE /images/{name}.
func (i Image) Delete(opts *RmImageOptions) (*Request, error) {
	return newRequest(i.endpoint, http.MethodDelete, withQuery(i.path(""), opts), nil)
}

// RegistryAuth is a registry credential: either a username/password tuple
// (with optional email and server address) or an opaque identity token.
// Encoded values must never be logged.
type RegistryAuth struct {
	Username      string `json:"username,omitempty"`
	Password      string `json:"password,omitempty"`
	Email         string `json:"email,omitempty"`
	ServerAddress string `json:"serveraddress,omitempty"`
	IdentityToken string `json:"identitytoken,omitempty"`

	encoded string
}

// RegistryAuthToken returns a token credential.
func RegistryAuthToken(token string) *RegistryAuth {
	return &RegistryAuth{IdentityToken: token}
}

// RegistryAuthPassword returns a username/password credential. email and
// serverAddress may be empty; unset fields are omitted from the encoded
// form entirely.
func RegistryAuthPassword(username, password, email, serverAddress string) *RegistryAuth {
	return &RegistryAuth{
		Username:      username,
		Password:      password,
		Email:         email,
		ServerAddress: serverAddress,
	}
}

// RegistryAuthEncoded wraps an already encoded header value, typically
// one relayed from an inbound request. Encode returns it untouched.
func RegistryAuthEncoded(value string) *RegistryAuth {
	return &RegistryAuth{encoded: value}
}

// Encode serializes the credential as JSON wrapped in URL-safe base64,
// the shape the X-Registry-Auth header expects.
func (a RegistryAuth) Encode() (string, error) {
	if a.encoded != "" {
		return a.encoded, nil
	}
	doc, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(doc), nil
}

// ImageFilter narrows an image listing.
type ImageFilter struct {
	kind  string
	value string
}

// ImageFilterDangling matches untagged images.
func ImageFilterDangling() ImageFilter { return ImageFilter{"dangling", "true"} }

// ImageFilterLabelName matches images carrying the label regardless of
// value.
func ImageFilterLabelName(name string) ImageFilter { return ImageFilter{"label", name} }

// ImageFilterLabel matches images carrying the label with the exact value.
func ImageFilterLabel(name, value string) ImageFilter {
	return ImageFilter{"label", name + "=" + value}
}

// ImageListOptions filters GET /images/json.
type ImageListOptions struct {
	params params
}

func (o *ImageListOptions) Serialize() (query string, ok bool) {
	if o == nil {
		return "", false
	}
	return o.params.encode()
}

// ImageListBuilder accumulates listing options.
type ImageListBuilder struct {
	params  params
	filters filterSet
}

// NewImageListBuilder returns an empty builder.
func NewImageListBuilder() *ImageListBuilder {
	return &ImageListBuilder{params: params{}, filters: filterSet{}}
}

// Digests includes digest information in the listing.
func (b *ImageListBuilder) Digests(d bool) *ImageListBuilder {
	b.params["digests"] = boolParam(d)
	return b
}

// All includes intermediate images.
func (b *ImageListBuilder) All() *ImageListBuilder {
	b.params["all"] = "true"
	return b
}

// FilterName matches on image name (the legacy `filter` parameter).
func (b *ImageListBuilder) FilterName(name string) *ImageListBuilder {
	b.params["filter"] = name
	return b
}

// Filter adds listing filters, accumulating values per kind across calls.
func (b *ImageListBuilder) Filter(filters ...ImageFilter) *ImageListBuilder {
	for _, f := range filters {
		b.filters.add(f.kind, f.value)
	}
	b.params["filters"] = b.filters.encode()
	return b
}

// FilterSpec merges an already decoded filter document into the
// accumulated set. Used when relaying caller-supplied filters.
func (b *ImageListBuilder) FilterSpec(spec map[string][]string) *ImageListBuilder {
	b.filters.merge(spec)
	b.params["filters"] = b.filters.encode()
	return b
}

// Build produces the immutable options value.
func (b *ImageListBuilder) Build() *ImageListOptions {
	return &ImageListOptions{params: b.params.clone()}
}

// BuildOptions controls POST /build. The context directory is tarred into
// the request body at build time.
type BuildOptions struct {
	contextDir string
	params     params
}

func (o *BuildOptions) Serialize() (query string, ok bool) {
	if o == nil {
		return "", false
	}
	return o.params.encode()
}

// ContextDir returns the directory packaged as the build context.
func (o *BuildOptions) ContextDir() string { return o.contextDir }

// ImageBuildBuilder accumulates image build options. contextDir must be a
// directory containing a Dockerfile.
type ImageBuildBuilder struct {
	contextDir string
	params     params
}

// NewImageBuildBuilder returns a builder for the given build context
// directory.
func NewImageBuildBuilder(contextDir string) *ImageBuildBuilder {
	return &ImageBuildBuilder{contextDir: contextDir, params: params{}}
}

// Dockerfile names the Dockerfile within the context; defaults to
// "Dockerfile" daemon-side.
func (b *ImageBuildBuilder) Dockerfile(path string) *ImageBuildBuilder {
	b.params["dockerfile"] = path
	return b
}

// Tag names the built image, as name or name:tag.
func (b *ImageBuildBuilder) Tag(t string) *ImageBuildBuilder {
	b.params["t"] = t
	return b
}

// Remote points at a remote build context instead of the uploaded one.
func (b *ImageBuildBuilder) Remote(r string) *ImageBuildBuilder {
	b.params["remote"] = r
	return b
}

// NoCache disables the image build cache.
func (b *ImageBuildBuilder) NoCache(nc bool) *ImageBuildBuilder {
	b.params["nocache"] = boolParam(nc)
	return b
}

// Rm removes intermediate containers after a successful build.
func (b *ImageBuildBuilder) Rm(r bool) *ImageBuildBuilder {
	b.params["rm"] = boolParam(r)
	return b
}

// ForceRm always removes intermediate containers.
func (b *ImageBuildBuilder) ForceRm(fr bool) *ImageBuildBuilder {
	b.params["forcerm"] = boolParam(fr)
	return b
}

// NetworkMode sets the networking mode for RUN instructions: bridge,
// host, none, container:<name|id> or a custom network name.
func (b *ImageBuildBuilder) NetworkMode(mode string) *ImageBuildBuilder {
	b.params["networkmode"] = mode
	return b
}

// Memory caps build memory in bytes.
func (b *ImageBuildBuilder) Memory(bytes uint64) *ImageBuildBuilder {
	b.params["memory"] = strconv.FormatUint(bytes, 10)
	return b
}

// CPUShares sets the build CPU shares.
func (b *ImageBuildBuilder) CPUShares(shares uint32) *ImageBuildBuilder {
	b.params["cpushares"] = strconv.FormatUint(uint64(shares), 10)
	return b
}

// Labels attaches labels to the built image, JSON-encoded as the Engine
// expects.
func (b *ImageBuildBuilder) Labels(labels map[string]string) *ImageBuildBuilder {
	doc, _ := json.Marshal(labels)
	b.params["labels"] = string(doc)
	return b
}

// Build produces the immutable options value.
func (b *ImageBuildBuilder) Build() *BuildOptions {
	return &BuildOptions{contextDir: b.contextDir, params: b.params.clone()}
}

// PullOptions controls POST /images/create, which covers both pulling
// from a registry and importing from a source.
type PullOptions struct {
	auth   *RegistryAuth
	params params
}

func (o *PullOptions) Serialize() (query string, ok bool) {
	if o == nil {
		return "", false
	}
	return o.params.encode()
}

// PullBuilder accumulates pull options.
type PullBuilder struct {
	auth   *RegistryAuth
	params params
}

// NewPullBuilder returns an empty builder.
func NewPullBuilder() *PullBuilder {
	return &PullBuilder{params: params{}}
}

// Image names the image to pull, optionally with a tag or digest. With an
// untagged name and no Tag option, all tags are pulled.
func (b *PullBuilder) Image(image string) *PullBuilder {
	b.params["fromImage"] = image
	return b
}

// Src imports an image from the given source instead of pulling.
func (b *PullBuilder) Src(src string) *PullBuilder {
	b.params["fromSrc"] = src
	return b
}

// Repo names the repository an imported image lands in, optionally with a
// tag.
func (b *PullBuilder) Repo(repo string) *PullBuilder {
	b.params["repo"] = repo
	return b
}

// Tag selects the tag or digest to pull.
func (b *PullBuilder) Tag(tag string) *PullBuilder {
	b.params["tag"] = tag
	return b
}

// Auth attaches registry credentials, sent via X-Registry-Auth.
func (b *PullBuilder) Auth(auth *RegistryAuth) *PullBuilder {
	b.auth = auth
	return b
}

// Build produces the immutable options value.
func (b *PullBuilder) Build() *PullOptions {
	return &PullOptions{auth: b.auth, params: b.params.clone()}
}

// TagOptions controls POST /images/{name}/tag.
type TagOptions struct {
	params params
}

func (o *TagOptions) Serialize() (query string, ok bool) {
	if o == nil {
		return "", false
	}
	return o.params.encode()
}

// TagBuilder accumulates tag options.
type TagBuilder struct {
	params params
}

// NewTagBuilder returns an empty builder.
func NewTagBuilder() *TagBuilder {
	return &TagBuilder{params: params{}}
}

// Repo sets the repository to tag into.
func (b *TagBuilder) Repo(repo string) *TagBuilder {
	b.params["repo"] = repo
	return b
}

// Tag sets the new tag name.
func (b *TagBuilder) Tag(tag string) *TagBuilder {
	b.params["tag"] = tag
	return b
}

// Build produces the immutable options value.
func (b *TagBuilder) Build() *TagOptions {
	return &TagOptions{params: b.params.clone()}
}

// PushOptions controls POST /images/{name}/push.
type PushOptions struct {
	auth   *RegistryAuth
	params params
}

func (o *PushOptions) Serialize() (query string, ok bool) {
	if o == nil {
		return "", false
	}
	return o.params.encode()
}

// PushBuilder accumulates push options.
type PushBuilder struct {
	auth   *RegistryAuth
	params params
}

// NewPushBuilder returns an empty builder.
func NewPushBuilder() *PushBuilder {
	return &PushBuilder{params: params{}}
}

// Tag selects the tag to push.
func (b *PushBuilder) Tag(tag string) *PushBuilder {
	b.params["tag"] = tag
	return b
}

// Auth attaches registry credentials, sent via X-Registry-Auth.
func (b *PushBuilder) Auth(auth *RegistryAuth) *PushBuilder {
	b.auth = auth
	return b
}

// Build produces the immutable options value.
func (b *PushBuilder) Build() *PushOptions {
	return &PushOptions{auth: b.auth, params: b.params.clone()}
}

// RmImageOptions controls DELETE /images/{name}.
type RmImageOptions struct {
	params params
}

func (o *RmImageOptions) Serialize() (query string, ok bool) {
	if o == nil {
		return "", false
	}
	return o.params.encode()
}

// RmImageBuilder accumulates image removal options.
type RmImageBuilder struct {
	params params
}

// NewRmImageBuilder returns an empty builder.
func NewRmImageBuilder() *RmImageBuilder {
	return &RmImageBuilder{params: params{}}
}

// Force removes the image even when containers reference it.
func (b *RmImageBuilder) Force(f bool) *RmImageBuilder {
	b.params["force"] = boolParam(f)
	return b
}

// NoPrune keeps untagged parent layers.
func (b *RmImageBuilder) NoPrune(np bool) *RmImageBuilder {
	b.params["noprune"] = boolParam(np)
	return b
}

// Build produces the immutable options value.
func (b *RmImageBuilder) Build() *RmImageOptions {
	return &RmImageOptions{params: b.params.clone()}
}
