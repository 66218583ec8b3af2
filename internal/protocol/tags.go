package protocol

// Tag names a message type. Server messages are XML elements starting with
// "<sc_"; client messages are \x01 separated and start with "cs_".
type Tag string

const (
	TagLoginOK           Tag = "sc_loginok"
	TagLogout            Tag = "cs_logout"
	TagBoot              Tag = "sc_boot"
	TagTableNode         Tag = "sc_table_node"
	TagTableOpen         Tag = "sc_table_open"
	TagTableOpenComplete Tag = "sc_table_open_complete"
	TagTableClose        Tag = "sc_table_close"
	TagPlayerSit         Tag = "sc_player_sit"
	TagPlayerStand       Tag = "sc_player_stand"
	TagDeal              Tag = "sc_deal"
	TagDealBlastComplete Tag = "sc_deal_blast_complete"
	TagCallMade          Tag = "sc_call_made"
	TagMakeBid           Tag = "cs_make_bid"
	TagCardPlayed        Tag = "sc_card_played"
	TagPlayCard          Tag = "cs_play_card"
	TagClaimAccepted     Tag = "sc_claim_accepted"
	TagVoteAccepted      Tag = "sc_vote_accepted"
	TagVoteRejected      Tag = "sc_vote_rejected"
	TagUndo              Tag = "sc_undo"
	TagNotifyUser        Tag = "sc_notify_user"
	TagTourneySubscribe  Tag = "cs_t_subscribe"
	TagTourneyRegister   Tag = "sc_t_register"
	TagTourneyDetails    Tag = "sc_tourney_details"
)

// Tags lists every tag the tracker interprets.
var Tags = []Tag{
	TagLoginOK, TagLogout, TagBoot,
	TagTableNode, TagTableOpen, TagTableOpenComplete, TagTableClose,
	TagPlayerSit, TagPlayerStand,
	TagDeal, TagDealBlastComplete,
	TagCallMade, TagMakeBid, TagCardPlayed, TagPlayCard,
	TagClaimAccepted, TagVoteAccepted, TagVoteRejected, TagUndo,
	TagNotifyUser,
	TagTourneySubscribe, TagTourneyRegister, TagTourneyDetails,
}

// IsServer reports whether the tag is sent by the game server.
func (t Tag) IsServer() bool { return len(t) > 3 && t[:3] == "sc_" }

// TagOf reads the tag from the first bytes of a raw message without parsing
// the rest of it.
func TagOf(raw string) Tag {
	if raw == "" {
		return ""
	}
	if raw[0] == '<' {
		for i := 1; i < len(raw); i++ {
			switch raw[i] {
			case ' ', '\t', '\n', '\r', '/', '>':
				return Tag(raw[1:i])
			}
		}
		return Tag(raw[1:])
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] == clientSep {
			return Tag(raw[:i])
		}
	}
	return Tag(raw)
}
