package ifcontrol

const (
	aliasNum = 26
	mtuNum   = 51
)
