//go:build darwin || netbsd || openbsd

package ifstructs

var extraFlagNames []flagName
