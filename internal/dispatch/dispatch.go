package dispatch

import (
	"context"
	"expvar"

	"github.com/rs/zerolog/log"

	"github.com/zbennett/bbo-extension/internal/deal"
	"github.com/zbennett/bbo-extension/internal/protocol"
)

var (
	metricMessages = expvar.NewInt("feed_messages_total")
	metricIgnored  = expvar.NewInt("feed_messages_ignored_total")
	metricPanics   = expvar.NewInt("feed_handler_panics_total")
	metricByTag    = expvar.NewMap("feed_messages_by_tag")
)

type HandlerFunc func(ctx context.Context, msg *protocol.Message)

// Dispatcher routes messages to the deal machine by tag. Only the tag is
// read here; handlers parse the body.
type Dispatcher struct {
	handlers map[protocol.Tag]HandlerFunc
}

func New(m *deal.Machine) *Dispatcher {
	return &Dispatcher{handlers: map[protocol.Tag]HandlerFunc{
		protocol.TagLoginOK:           m.LoginOK,
		protocol.TagLogout:            m.SessionEnd,
		protocol.TagBoot:              m.SessionEnd,
		protocol.TagTableNode:         m.TableOpen,
		protocol.TagTableOpen:         m.TableOpen,
		protocol.TagTableOpenComplete: m.TableOpenComplete,
		protocol.TagTableClose:        m.TableClose,
		protocol.TagPlayerSit:         m.PlayerSit,
		protocol.TagPlayerStand:       m.PlayerStand,
		protocol.TagDeal:              m.Deal,
		protocol.TagDealBlastComplete: m.DealBlastComplete,
		protocol.TagCallMade:          m.CallMade,
		protocol.TagMakeBid:           m.MakeBid,
		protocol.TagCardPlayed:        m.CardPlayed,
		protocol.TagPlayCard:          m.PlayCard,
		protocol.TagClaimAccepted:     m.ClaimAccepted,
		protocol.TagVoteAccepted:      m.VoteAccepted,
		protocol.TagVoteRejected:      m.VoteRejected,
		protocol.TagUndo:              m.Undo,
		protocol.TagNotifyUser:        m.NotifyUser,
		protocol.TagTourneySubscribe:  m.TourneySubscribe,
		protocol.TagTourneyRegister:   m.TourneyRegister,
		protocol.TagTourneyDetails:    m.TourneyDetails,
	}}
}

func (d *Dispatcher) Handles(tag protocol.Tag) bool {
	_, ok := d.handlers[tag]
	return ok
}

// Dispatch runs the handler for msg. Unknown tags are ignored and reported
// as false.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *protocol.Message) bool {
	metricMessages.Add(1)
	h, ok := d.handlers[msg.Tag]
	if !ok {
		metricIgnored.Add(1)
		return false
	}
	metricByTag.Add(string(msg.Tag), 1)
	defer func() {
		if r := recover(); r != nil {
			metricPanics.Add(1)
			log.Error().Interface("panic", r).Str("tag", string(msg.Tag)).Str("raw", msg.Raw).Msg("message handler failed")
		}
	}()
	h(ctx, msg)
	return true
}

// Run consumes messages in arrival order until in is closed or ctx ends.
func (d *Dispatcher) Run(ctx context.Context, in <-chan *protocol.Message) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-in:
			if !ok {
				return nil
			}
			d.Dispatch(ctx, msg)
		}
	}
}
