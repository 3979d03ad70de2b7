// Package flashloan holds the end-to-end flash loan test against a live supersim.
//
// The test is skipped unless the L2 RPCs answer, or FLASHLOAN_E2E_LAUNCH is set and a
// supersim binary is on the PATH. Contract addresses are read like the CLI reads them,
// from the FLASHLOAN_* and VITE_* environment variables and the env file named by
// FLASHLOAN_E2E_ENV_FILE.
package flashloan
