// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package digest fingerprints tabulation inputs.

# Inputs Hash

The inputs hash is an HMAC-SHA256 of the raw ballot file, hex encoded:

	hash := digest.InputsHash(data, salt)
	err := digest.VerifyInputs(data, hash, salt)

It is stored with every run so a replay can prove it tabulated the same file.
The salt comes from configuration (INPUTS_SALT) and may be empty.

# Short Codes

Short codes are base62 labels for runs, derived from the inputs hash and the
run ID. They appear in the terminal summary and the results workbook:

	code := digest.ShortCode(runID, hash)

Only alphanumeric characters (0-9, a-z, A-Z) are used.
*/
package digest
