package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wareck/gerbera/pkg/description"
	"github.com/wareck/gerbera/pkg/discovery"
	"github.com/wareck/gerbera/pkg/log"
	"github.com/wareck/gerbera/pkg/upnp"
	"github.com/wareck/gerbera/pkg/version"
)

// HTTP transport defaults.
const (
	DefaultVirtualDirectory = "content"
	DefaultNotifyTimeout    = 10 * time.Second
	DefaultShutdownTimeout  = 5 * time.Second
)

func init() {
	chi.RegisterMethod("SUBSCRIBE")
	chi.RegisterMethod("UNSUBSCRIBE")
}

// HTTPConfig configures an HTTPTransport.
type HTTPConfig struct {
	// Advertiser sends alive/byebye announcements (optional).
	Advertiser discovery.Advertiser

	// ContentHandler serves the virtual directory (optional).
	ContentHandler http.Handler

	// VirtualDirectory is the path segment of the content handler
	// (default: "content").
	VirtualDirectory string

	// Documents are static documents served by path, such as SCPDs.
	Documents map[string][]byte

	// MaxSubscriptionTimeout caps granted subscription durations
	// (default: 1800s).
	MaxSubscriptionTimeout time.Duration

	// ReapInterval is how often expired subscriptions are dropped
	// (default: 30s).
	ReapInterval time.Duration

	// ServerHeader is the SERVER header value.
	ServerHeader string

	// HTTPClient sends GENA NOTIFY messages.
	HTTPClient *http.Client

	// Logger for operational logging (optional).
	Logger *slog.Logger

	// ProtocolLogger captures subscription and advertisement state (optional).
	ProtocolLogger log.Logger
}

// registration is the currently registered device.
type registration struct {
	handle      Handle
	description []byte
	root        *description.Root
	callback    Callback
	control     map[string]description.Service
	events      map[string]description.Service
}

// HTTPTransport is a Transport serving UPnP over HTTP.
type HTTPTransport struct {
	config HTTPConfig
	subs   *subscriptions

	mu         sync.RWMutex
	listener   net.Listener
	server     *http.Server
	addr       Address
	device     *registration
	adv        *advertisement
	nextHandle Handle
	reapStop   chan struct{}

	wg sync.WaitGroup
}

// NewHTTPTransport creates an unbound HTTP transport.
func NewHTTPTransport(config HTTPConfig) *HTTPTransport {
	if config.VirtualDirectory == "" {
		config.VirtualDirectory = DefaultVirtualDirectory
	}
	if config.MaxSubscriptionTimeout == 0 {
		config.MaxSubscriptionTimeout = DefaultMaxSubscriptionTimeout
	}
	if config.ReapInterval == 0 {
		config.ReapInterval = DefaultReapInterval
	}
	if config.ServerHeader == "" {
		config.ServerHeader = version.ServerHeader()
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: DefaultNotifyTimeout}
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	config.ProtocolLogger = log.OrNoop(config.ProtocolLogger)

	return &HTTPTransport{
		config: config,
		subs:   newSubscriptions(),
	}
}

// Bind starts the HTTP server. When the requested port is taken, a random
// port is used instead. An unspecified IP is reported as the first
// non-loopback IPv4 address of the host.
func (t *HTTPTransport) Bind(ctx context.Context, ip string, port int) (Address, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.listener != nil {
		return Address{}, ErrAlreadyBound
	}

	ln, err := listen(ctx, ip, port)
	if err != nil && port != 0 && errors.Is(err, syscall.EADDRINUSE) {
		t.config.Logger.Warn("port in use, using a random port", "port", port)
		ln, err = listen(ctx, ip, 0)
	}
	if err != nil {
		return Address{}, fmt.Errorf("bind %s: %w", net.JoinHostPort(ip, strconv.Itoa(port)), err)
	}

	tcp := ln.Addr().(*net.TCPAddr)
	addr := Address{IP: tcp.IP.String(), Port: tcp.Port}
	if tcp.IP.IsUnspecified() {
		addr.IP = firstIPv4()
	}

	srv := &http.Server{
		Handler:           t.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	t.listener = ln
	t.server = srv
	t.addr = addr
	t.reapStop = make(chan struct{})

	t.wg.Add(2)
	go t.serve(srv, ln)
	go t.reapLoop(t.reapStop)

	t.config.Logger.Info("transport bound", "address", addr.String())
	return addr, nil
}

func listen(ctx context.Context, ip string, port int) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(ctx, "tcp4", net.JoinHostPort(ip, strconv.Itoa(port)))
}

func (t *HTTPTransport) serve(srv *http.Server, ln net.Listener) {
	defer t.wg.Done()
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		t.config.Logger.Error("http server stopped", "error", err)
	}
}

// Addr returns the bound address, or the zero Address when unbound.
func (t *HTTPTransport) Addr() Address {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.addr
}

// Register publishes the description and installs the callback.
// Only one device can be registered at a time.
func (t *HTTPTransport) Register(desc string, cb Callback) (Handle, error) {
	if cb == nil {
		return InvalidHandle, ErrNilCallback
	}
	root, err := description.Parse([]byte(desc))
	if err != nil {
		return InvalidHandle, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.listener == nil {
		return InvalidHandle, ErrNotBound
	}
	if t.device != nil {
		return InvalidHandle, ErrAlreadyRegistered
	}

	reg := &registration{
		description: []byte(desc),
		root:        root,
		callback:    cb,
		control:     make(map[string]description.Service),
		events:      make(map[string]description.Service),
	}
	for _, svc := range root.Device.Services {
		if p := urlPath(svc.ControlURL); p != "" {
			reg.control[p] = svc
		}
		if p := urlPath(svc.EventSubURL); p != "" {
			reg.events[p] = svc
		}
	}

	t.nextHandle++
	if t.nextHandle == InvalidHandle {
		t.nextHandle++
	}
	reg.handle = t.nextHandle
	t.device = reg

	t.config.Logger.Info("device registered", "udn", root.Device.UDN, "handle", reg.handle)
	return reg.handle, nil
}

// Advertise starts the alive announcement loop for the device. Calling it
// again restarts the loop with the new interval.
func (t *HTTPTransport) Advertise(h Handle, interval time.Duration) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}

	t.mu.Lock()
	if t.device == nil || t.device.handle != h {
		t.mu.Unlock()
		return ErrInvalidHandle
	}
	if t.config.Advertiser == nil {
		t.mu.Unlock()
		t.config.Logger.Debug("no advertiser configured, skipping announcements")
		return nil
	}

	dev := t.device.root.Device
	info := discovery.DeviceInfo{
		UDN:          dev.UDN,
		DeviceType:   dev.DeviceType,
		Location:     "http://" + t.addr.String() + description.DocumentPath,
		FriendlyName: dev.FriendlyName,
		Server:       t.config.ServerHeader,
	}
	for _, svc := range dev.Services {
		info.ServiceTypes = append(info.ServiceTypes, svc.Type)
	}

	onState := func(newState, reason string) {
		t.logState(log.StateEntityAdvertisement, dev.UDN, newState, reason)
	}
	old := t.adv
	t.adv = newAdvertisement(t.config.Advertiser, info, interval, t.config.Logger, onState)
	adv := t.adv
	t.mu.Unlock()

	if old != nil {
		if err := old.stop(); err != nil {
			t.config.Logger.Warn("byebye failed", "error", err)
		}
	}
	adv.start()
	t.logState(log.StateEntityAdvertisement, dev.UDN, "ACTIVE", fmt.Sprintf("interval %s", interval))
	return nil
}

// Unregister stops advertising, sends byebye, drops all subscriptions and
// removes the device.
func (t *HTTPTransport) Unregister(h Handle) error {
	t.mu.Lock()
	if t.device == nil || t.device.handle != h {
		t.mu.Unlock()
		return ErrInvalidHandle
	}
	udn := t.device.root.Device.UDN
	adv := t.adv
	t.device = nil
	t.adv = nil
	t.mu.Unlock()

	t.subs.clear()
	t.config.Logger.Info("device unregistered", "udn", udn, "handle", h)

	if adv != nil {
		return adv.stop()
	}
	return nil
}

// Close stops the HTTP server and the subscription reaper. A registered
// device is unregistered first. It is safe to call Close multiple times.
func (t *HTTPTransport) Close() error {
	t.mu.Lock()
	if t.listener == nil {
		t.mu.Unlock()
		return nil
	}
	adv := t.adv
	srv := t.server
	reapStop := t.reapStop
	t.device = nil
	t.adv = nil
	t.listener = nil
	t.server = nil
	t.addr = Address{}
	t.reapStop = nil
	t.mu.Unlock()

	var errs []error
	if adv != nil {
		errs = append(errs, adv.stop())
	}

	close(reapStop)

	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		errs = append(errs, err)
		_ = srv.Close()
	}

	t.wg.Wait()
	t.subs.clear()
	return errors.Join(errs...)
}

// Notify sends a change event to every subscriber of the service.
func (t *HTTPTransport) Notify(ctx context.Context, serviceID string, vars ...upnp.StateVariable) error {
	body := EncodePropertySet(vars)

	var errs []error
	for _, target := range t.subs.forService(serviceID) {
		if err := sendNotify(ctx, t.config.HTTPClient, target, body); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", target.sid, err))
		}
	}
	return errors.Join(errs...)
}

// SubscriptionCount returns the number of active subscriptions.
func (t *HTTPTransport) SubscriptionCount() int {
	return t.subs.len()
}

func (t *HTTPTransport) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(t.recoveryMiddleware)
	r.Use(t.loggingMiddleware)
	r.Use(t.serverHeaderMiddleware)
	r.Use(t.bodySizeLimitMiddleware)

	r.Get(description.DocumentPath, t.handleDescription)
	if t.config.ContentHandler != nil {
		prefix := "/" + t.config.VirtualDirectory
		r.Mount(prefix, http.StripPrefix(prefix, t.config.ContentHandler))
	}
	r.Get("/*", t.handleDocument)
	r.Post("/*", t.handleControl)
	r.MethodFunc("SUBSCRIBE", "/*", t.handleSubscribe)
	r.MethodFunc("UNSUBSCRIBE", "/*", t.handleUnsubscribe)

	return r
}

func (t *HTTPTransport) registered() *registration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.device
}

func (t *HTTPTransport) handleDescription(w http.ResponseWriter, r *http.Request) {
	dev := t.registered()
	if dev == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", ContentTypeXML)
	_, _ = w.Write(dev.description)
}

func (t *HTTPTransport) handleDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := t.config.Documents[r.URL.Path]
	if !ok || t.registered() == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", ContentTypeXML)
	_, _ = w.Write(doc)
}

func (t *HTTPTransport) handleControl(w http.ResponseWriter, r *http.Request) {
	dev := t.registered()
	if dev == nil {
		http.NotFound(w, r)
		return
	}
	svc, ok := dev.control[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "cannot read request body", http.StatusBadRequest)
		return
	}
	action, args, err := DecodeAction(body)
	if err != nil {
		t.config.Logger.Debug("invalid SOAP request", "path", r.URL.Path, "error", err)
		writeFault(w, upnp.ErrorInvalidAction, FaultDescription(upnp.ErrorInvalidAction))
		return
	}
	if _, hdrAction, ok := SOAPAction(r.Header.Get("SOAPACTION")); ok && hdrAction != action {
		writeFault(w, upnp.ErrorInvalidAction, "SOAPACTION does not match body")
		return
	}

	var ev upnp.Event = &upnp.ActionEvent{
		ServiceID:  svc.ID,
		ActionName: action,
		DeviceUDN:  dev.root.Device.UDN,
		Arguments:  args,
		RemoteAddr: r.RemoteAddr,
	}
	if action == QueryStateVariable {
		ev = &upnp.StateVarEvent{
			ServiceID:    svc.ID,
			DeviceUDN:    dev.root.Device.UDN,
			VariableName: argValue(args, "varName"),
		}
	}
	req, err := dev.callback(r.Context(), ev)

	switch upnp.StatusOf(err) {
	case upnp.StatusSuccess:
		ar, ok := req.(*upnp.ActionRequest)
		if !ok {
			writeFault(w, upnp.ErrorActionFailed, FaultDescription(upnp.ErrorActionFailed))
			return
		}
		w.Header().Set("Content-Type", ContentTypeXML)
		w.Header().Set("EXT", "")
		_, _ = w.Write(EncodeResponse(svc.Type, action, ar.Result))
	case upnp.StatusServiceError:
		var aErr *upnp.ActionError
		errors.As(err, &aErr)
		writeFault(w, aErr.Code, aErr.Description)
	case upnp.StatusUnknownService:
		writeFault(w, upnp.ErrorInvalidAction, FaultDescription(upnp.ErrorInvalidAction))
	case upnp.StatusUnsupportedEvent:
		t.config.Logger.Debug("untranslatable control request", "service", svc.ID, "action", action, "error", err)
		writeFault(w, upnp.ErrorInvalidAction, FaultDescription(upnp.ErrorInvalidAction))
	default:
		t.config.Logger.Warn("action failed", "service", svc.ID, "action", action, "error", err)
		writeFault(w, upnp.ErrorActionFailed, FaultDescription(upnp.ErrorActionFailed))
	}
}

func writeFault(w http.ResponseWriter, code int, description string) {
	w.Header().Set("Content-Type", ContentTypeXML)
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write(EncodeFault(code, description))
}

func (t *HTTPTransport) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	dev := t.registered()
	if dev == nil {
		http.NotFound(w, r)
		return
	}
	svc, ok := dev.events[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}

	requested, err := ParseTimeout(r.Header.Get("TIMEOUT"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if sid := r.Header.Get("SID"); sid != "" {
		if r.Header.Get("NT") != "" || r.Header.Get("CALLBACK") != "" {
			http.Error(w, "incompatible header fields", http.StatusBadRequest)
			return
		}
		granted := grantTimeout(requested, t.config.MaxSubscriptionTimeout)
		if err := t.subs.renew(sid, svc.ID, expiry(granted)); err != nil {
			http.Error(w, err.Error(), http.StatusPreconditionFailed)
			return
		}
		t.logState(log.StateEntitySubscription, dev.root.Device.UDN, "RENEWED", sid)
		writeSubscribed(w, sid, granted)
		return
	}

	if r.Header.Get("NT") != "upnp:event" {
		http.Error(w, "NT must be upnp:event", http.StatusPreconditionFailed)
		return
	}
	callbacks, err := ParseCallback(r.Header.Get("CALLBACK"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusPreconditionFailed)
		return
	}

	sid := "uuid:" + uuid.NewString()
	ev := &upnp.SubscriptionEvent{
		ServiceID: svc.ID,
		DeviceUDN: dev.root.Device.UDN,
		SID:       sid,
		Requested: requested,
	}
	req, err := dev.callback(r.Context(), ev)
	sr, ok := req.(*upnp.SubscriptionRequest)
	if err != nil || !ok || !sr.Accepted {
		t.config.Logger.Info("subscription rejected", "service", svc.ID, "error", err)
		http.Error(w, "subscription rejected", http.StatusServiceUnavailable)
		return
	}

	granted := grantTimeout(sr.Granted, t.config.MaxSubscriptionTimeout)
	sub := &Subscription{
		SID:       sid,
		ServiceID: svc.ID,
		Callbacks: callbacks,
		Expires:   expiry(granted),
	}
	initial := notifyTarget{sid: sid, callbacks: callbacks, seq: sub.nextSeq()}
	t.subs.add(sub)
	t.logState(log.StateEntitySubscription, dev.root.Device.UDN, "ACTIVE", sid)
	writeSubscribed(w, sid, granted)

	vars := sr.Variables
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), DefaultNotifyTimeout)
		defer cancel()
		if err := sendNotify(ctx, t.config.HTTPClient, initial, EncodePropertySet(vars)); err != nil {
			t.config.Logger.Warn("initial event failed", "sid", sid, "error", err)
		}
	}()
}

func (t *HTTPTransport) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	dev := t.registered()
	if dev == nil {
		http.NotFound(w, r)
		return
	}
	svc, ok := dev.events[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}

	sid := r.Header.Get("SID")
	if sid == "" {
		http.Error(w, "SID required", http.StatusPreconditionFailed)
		return
	}
	if r.Header.Get("NT") != "" || r.Header.Get("CALLBACK") != "" {
		http.Error(w, "incompatible header fields", http.StatusBadRequest)
		return
	}
	if err := t.subs.remove(sid, svc.ID); err != nil {
		http.Error(w, err.Error(), http.StatusPreconditionFailed)
		return
	}
	t.logState(log.StateEntitySubscription, dev.root.Device.UDN, "CANCELLED", sid)
	w.WriteHeader(http.StatusOK)
}

func writeSubscribed(w http.ResponseWriter, sid string, granted time.Duration) {
	w.Header().Set("SID", sid)
	w.Header().Set("TIMEOUT", FormatTimeout(granted))
	w.Header().Set("Content-Length", "0")
	w.WriteHeader(http.StatusOK)
}

func expiry(granted time.Duration) time.Time {
	if granted <= 0 {
		return time.Time{}
	}
	return time.Now().Add(granted)
}

func (t *HTTPTransport) reapLoop(stop <-chan struct{}) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			for _, sub := range t.subs.expire(now) {
				t.config.Logger.Debug("subscription expired", "sid", sub.SID, "service", sub.ServiceID)
				t.logState(log.StateEntitySubscription, "", "EXPIRED", sub.SID)
				t.reportExpired(sub)
			}
		}
	}
}

// reportExpired delivers a SubscriptionExpiredEvent to the registered
// device. Devices that do not handle expiry answer with a translation error.
func (t *HTTPTransport) reportExpired(sub *Subscription) {
	dev := t.registered()
	if dev == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), DefaultNotifyTimeout)
	defer cancel()

	_, err := dev.callback(ctx, &upnp.SubscriptionExpiredEvent{ServiceID: sub.ServiceID, SID: sub.SID})
	switch upnp.StatusOf(err) {
	case upnp.StatusSuccess, upnp.StatusUnsupportedEvent:
	default:
		t.config.Logger.Warn("subscription expiry callback failed", "sid", sub.SID, "error", err)
	}
}

func (t *HTTPTransport) logState(entity log.StateEntity, udn, newState, reason string) {
	t.config.ProtocolLogger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: uuid.NewString(),
		Direction:    log.DirectionOut,
		Layer:        log.LayerTransport,
		Category:     log.CategoryState,
		DeviceUDN:    udn,
		StateChange: &log.StateChangeEvent{
			Entity:   entity,
			NewState: newState,
			Reason:   reason,
		},
	})
}

// urlPath returns the path component of an absolute or relative URL.
func urlPath(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	p := u.Path
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// firstIPv4 returns the first non-loopback IPv4 address of the host.
func firstIPv4() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "127.0.0.1"
	}
	for _, ifi := range ifaces {
		if ifi.Flags&net.FlagUp == 0 || ifi.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := ifi.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			if ipn, ok := a.(*net.IPNet); ok {
				if v4 := ipn.IP.To4(); v4 != nil {
					return v4.String()
				}
			}
		}
	}
	return "127.0.0.1"
}

// Compile-time interface satisfaction check.
var _ Transport = (*HTTPTransport)(nil)
