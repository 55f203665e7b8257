// Package testutil provides fixtures for testing the pipelines without a
// JDK or android build tools installed.
//
// Key components:
//   - FakeRunner: records commands and answers them through a handler
//   - Simulator: a handler that mimics baksmali, smali, jadx, git,
//     zipalign and apksigner on the real filesystem
//   - NewSession: a session wired to a FakeRunner, with stub jars and
//     keystore in place
//   - WriteApk / ReadApk: build and inspect small zip packages
package testutil
