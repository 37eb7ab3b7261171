package htdf

type DropReason string

const (
	DropReasonNoServiceDay        DropReason = "NoServiceDay"
	DropReasonNoOutboundItinerary DropReason = "NoOutboundItinerary"
	DropReasonNoReturnItinerary   DropReason = "NoReturnItinerary"
	DropReasonInfeasibleWindow    DropReason = "InfeasibleWindow"
	DropReasonHikeTooShort        DropReason = "HikeTooShort"
	DropReasonUnknownStop         DropReason = "UnknownStop"
	DropReasonUnorderedAccess     DropReason = "UnorderedAccessPoints"
)

// Diagnostic records why a trail (or one of its access point combinations)
// produced no candidate. Diagnostics are part of a successful result, never
// failures.
type Diagnostic struct {
	TrailRef  string     `groups:"basic"`
	TrailName string     `groups:"basic"`
	StopRef   string     `groups:"basic"`
	Reason    DropReason `groups:"basic"`
	Detail    string     `groups:"basic"`
}
