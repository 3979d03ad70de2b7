package service

import "strings"

// PrefixEnvVar returns the environment variable names for a flag, under the given prefix.
func PrefixEnvVar(prefix, suffix string) []string {
	return []string{prefix + "_" + suffix}
}

// EnvVarName converts a dotted or dashed flag name into its env-var suffix, e.g. relay.mode -> RELAY_MODE.
func EnvVarName(flagName string) string {
	return strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(flagName))
}
