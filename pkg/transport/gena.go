package transport

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/wareck/gerbera/pkg/upnp"
)

// GENA constants.
const (
	EventNS                       = "urn:schemas-upnp-org:event-1-0"
	DefaultMaxSubscriptionTimeout = 1800 * time.Second
	DefaultReapInterval           = 30 * time.Second
)

// GENA errors.
var (
	ErrUnknownSID      = errors.New("unknown subscription id")
	ErrInvalidCallback = errors.New("invalid CALLBACK header")
	ErrInvalidTimeout  = errors.New("invalid TIMEOUT header")
)

// Subscription is an accepted event subscription.
type Subscription struct {
	SID       string
	ServiceID string
	Callbacks []*url.URL

	// Expires is the expiry time. Zero means never.
	Expires time.Time

	seq uint32
}

// nextSeq returns the event key for the next NOTIFY.
func (s *Subscription) nextSeq() uint32 {
	seq := s.seq
	if s.seq == ^uint32(0) {
		s.seq = 1
	} else {
		s.seq++
	}
	return seq
}

// subscriptions is the GENA subscriber table.
type subscriptions struct {
	mu    sync.Mutex
	bySID map[string]*Subscription
}

func newSubscriptions() *subscriptions {
	return &subscriptions{bySID: make(map[string]*Subscription)}
}

func (s *subscriptions) add(sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bySID[sub.SID] = sub
}

func (s *subscriptions) renew(sid, serviceID string, expires time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.bySID[sid]
	if !ok || sub.ServiceID != serviceID {
		return ErrUnknownSID
	}
	sub.Expires = expires
	return nil
}

func (s *subscriptions) remove(sid, serviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.bySID[sid]
	if !ok || sub.ServiceID != serviceID {
		return ErrUnknownSID
	}
	delete(s.bySID, sid)
	return nil
}

// expire removes and returns subscriptions that expired at or before now.
func (s *subscriptions) expire(now time.Time) []*Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Subscription
	for sid, sub := range s.bySID {
		if !sub.Expires.IsZero() && !now.Before(sub.Expires) {
			out = append(out, sub)
			delete(s.bySID, sid)
		}
	}
	return out
}

// forService returns a snapshot of the subscriptions of one service,
// each paired with the SEQ to use for the next message.
func (s *subscriptions) forService(serviceID string) []notifyTarget {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []notifyTarget
	for _, sub := range s.bySID {
		if sub.ServiceID == serviceID {
			out = append(out, notifyTarget{sid: sub.SID, callbacks: sub.Callbacks, seq: sub.nextSeq()})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].sid < out[j].sid })
	return out
}

func (s *subscriptions) get(sid string) (notifyTarget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.bySID[sid]
	if !ok {
		return notifyTarget{}, false
	}
	return notifyTarget{sid: sub.SID, callbacks: sub.Callbacks, seq: sub.nextSeq()}, true
}

func (s *subscriptions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bySID)
}

func (s *subscriptions) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bySID = make(map[string]*Subscription)
}

type notifyTarget struct {
	sid       string
	callbacks []*url.URL
	seq       uint32
}

// ParseCallback parses a GENA CALLBACK header ("<url1><url2>...").
func ParseCallback(header string) ([]*url.URL, error) {
	var out []*url.URL
	rest := strings.TrimSpace(header)
	for rest != "" {
		if rest[0] != '<' {
			return nil, ErrInvalidCallback
		}
		end := strings.IndexByte(rest, '>')
		if end < 0 {
			return nil, ErrInvalidCallback
		}
		u, err := url.Parse(rest[1:end])
		if err != nil || u.Scheme != "http" || u.Host == "" {
			return nil, ErrInvalidCallback
		}
		out = append(out, u)
		rest = strings.TrimSpace(rest[end+1:])
	}
	if len(out) == 0 {
		return nil, ErrInvalidCallback
	}
	return out, nil
}

// ParseTimeout parses a GENA TIMEOUT header ("Second-N" or "Second-infinite").
// An empty header or infinite yields zero.
func ParseTimeout(header string) (time.Duration, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0, nil
	}
	v, ok := strings.CutPrefix(strings.ToLower(header), "second-")
	if !ok {
		return 0, ErrInvalidTimeout
	}
	if v == "infinite" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, ErrInvalidTimeout
	}
	return time.Duration(n) * time.Second, nil
}

// FormatTimeout renders a TIMEOUT header value.
func FormatTimeout(d time.Duration) string {
	if d <= 0 {
		return "Second-infinite"
	}
	return "Second-" + strconv.Itoa(int(d/time.Second))
}

// grantTimeout bounds the duration granted to a subscriber.
func grantTimeout(d, limit time.Duration) time.Duration {
	if limit <= 0 {
		return d
	}
	if d <= 0 || d > limit {
		return limit
	}
	return d
}

type propertySet struct {
	XMLName    xml.Name   `xml:"urn:schemas-upnp-org:event-1-0 propertyset"`
	Properties []property `xml:"property"`
}

type property struct {
	Variable propertyVar `xml:",any"`
}

type propertyVar struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// EncodePropertySet renders the body of a GENA NOTIFY.
func EncodePropertySet(vars []upnp.StateVariable) []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, `<e:propertyset xmlns:e="%s">`, EventNS)
	for _, v := range vars {
		fmt.Fprintf(&b, "<e:property><%s>%s</%s></e:property>", v.Name, escape(v.Value), v.Name)
	}
	b.WriteString("</e:propertyset>\n")
	return b.Bytes()
}

// DecodePropertySet parses the body of a GENA NOTIFY.
func DecodePropertySet(body []byte) ([]upnp.StateVariable, error) {
	var ps propertySet
	if err := xml.Unmarshal(body, &ps); err != nil {
		return nil, fmt.Errorf("parse propertyset: %w", err)
	}
	out := make([]upnp.StateVariable, 0, len(ps.Properties))
	for _, p := range ps.Properties {
		out = append(out, upnp.StateVariable{Name: p.Variable.XMLName.Local, Value: p.Variable.Value})
	}
	return out, nil
}

// sendNotify delivers one event message, trying callback URLs in order.
func sendNotify(ctx context.Context, client *http.Client, target notifyTarget, body []byte) error {
	var errs []error
	for _, cb := range target.callbacks {
		req, err := http.NewRequestWithContext(ctx, "NOTIFY", cb.String(), bytes.NewReader(body))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		req.Header.Set("Content-Type", ContentTypeXML)
		req.Header.Set("NT", "upnp:event")
		req.Header.Set("NTS", "upnp:propchange")
		req.Header.Set("SID", target.sid)
		req.Header.Set("SEQ", strconv.FormatUint(uint64(target.seq), 10))

		resp, err := client.Do(req)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		resp.Body.Close()
		if resp.StatusCode/100 == 2 {
			return nil
		}
		errs = append(errs, fmt.Errorf("notify %s: status %d", cb, resp.StatusCode))
	}
	return errors.Join(errs...)
}
