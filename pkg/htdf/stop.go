package htdf

type Stop struct {
	PrimaryIdentifier string `groups:"basic"`

	PrimaryName string `groups:"basic"`

	DataSource string `groups:"internal"`

	Location *Location `groups:"basic"`
}
