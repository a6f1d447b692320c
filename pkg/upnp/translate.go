package upnp

// Translate converts a transport event into a routable request.
//
// Only action and subscription events are routable. Any other kind,
// including UnknownEvent, yields a *TranslationError so the caller can
// reject it without touching a service.
func Translate(ev Event) (Request, error) {
	switch e := ev.(type) {
	case nil:
		return nil, &TranslationError{Type: EventUnknown, Err: ErrNilEvent}
	case *ActionEvent:
		if e == nil {
			return nil, &TranslationError{Type: EventActionRequest, Err: ErrNilEvent}
		}
		return NewActionRequest(e), nil
	case *SubscriptionEvent:
		if e == nil {
			return nil, &TranslationError{Type: EventSubscriptionRequest, Err: ErrNilEvent}
		}
		return NewSubscriptionRequest(e), nil
	case *StateVarEvent, *SubscriptionExpiredEvent, *AdvertisementEvent, *UnknownEvent:
		return nil, &TranslationError{Type: ev.Type(), Err: ErrUnsupportedEvent}
	default:
		return nil, &TranslationError{Type: EventUnknown, Err: ErrUnsupportedEvent}
	}
}
