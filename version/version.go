// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package version

import "fmt"

// Set at build time with
//   -ldflags "-X gitlab.com/jaxnet/headermmr/version.tag=v0.2.0 -X gitlab.com/jaxnet/headermmr/version.commit=$(git rev-parse --short HEAD)"
var (
	tag    = "v0.1.0"
	commit = "dev"
	date   = ""
)

// GetVersion returns the tag and the commit of the running binary.
func GetVersion() string {
	if date == "" {
		return fmt.Sprintf("%s-%s", tag, commit)
	}
	return fmt.Sprintf("%s-%s (%s)", tag, commit, date)
}
