package frame

import (
	"fmt"

	"github.com/CedricK04/ums-go/pkg/trace"
	"github.com/CedricK04/ums-go/pkg/umserr"
)

// Handshake metadata describes the channel layout to a receiver before
// streaming starts. Channel names appear only here, never in sample frames.
//
// Layout: [count: 1 byte] then per channel [type: 1 byte][name length: 1
// byte][name bytes].

// ChannelInfo is one channel's handshake entry.
type ChannelInfo struct {
	Type trace.Type
	Name string
}

// Handshake serializes the registry's channel metadata.
func Handshake(reg *trace.Registry) ([]byte, error) {
	chans := reg.Channels()
	if len(chans) > 255 {
		return nil, umserr.ErrRange
	}

	out := make([]byte, 0, 1+len(chans)*2)
	out = append(out, byte(len(chans)))
	for _, ch := range chans {
		if len(ch.Name) > 255 {
			return nil, fmt.Errorf("%w: channel name %q too long", umserr.ErrInvalidParameter, ch.Name)
		}
		out = append(out, byte(ch.Source.Type()), byte(len(ch.Name)))
		out = append(out, ch.Name...)
	}
	return out, nil
}

// ParseHandshake decodes a handshake message produced by Handshake.
func ParseHandshake(data []byte) ([]ChannelInfo, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("%w: empty handshake", umserr.ErrInvalidParameter)
	}

	count := int(data[0])
	infos := make([]ChannelInfo, 0, count)
	off := 1
	for i := 0; i < count; i++ {
		if off+2 > len(data) {
			return nil, fmt.Errorf("%w: handshake truncated at channel %d", umserr.ErrInvalidParameter, i)
		}
		typ := trace.Type(data[off])
		nameLen := int(data[off+1])
		off += 2
		if off+nameLen > len(data) {
			return nil, fmt.Errorf("%w: handshake name truncated at channel %d", umserr.ErrInvalidParameter, i)
		}
		infos = append(infos, ChannelInfo{Type: typ, Name: string(data[off : off+nameLen])})
		off += nameLen
	}
	if off != len(data) {
		return nil, fmt.Errorf("%w: %d trailing handshake bytes", umserr.ErrInvalidParameter, len(data)-off)
	}

	return infos, nil
}
