// Package persistence keeps the runtime state a media server must carry
// across restarts: its generated UDN, so control points keep recognizing the
// device, and the last ContentDirectory SystemUpdateID, so the value never
// goes backwards.
package persistence
