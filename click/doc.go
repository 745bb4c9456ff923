// SPDX-License-Identifier: EPL-2.0

// Package click detects musical sections on a recorded click track.
//
// The Analyzer streams the final click output through a 1–8 kHz
// Butterworth bandpass (order-4 prototype, cascaded biquads with state
// carried across blocks), rectifies and smooths the result into an
// envelope, takes the half-wave-rectified first difference as a novelty
// signal, and picks peaks against thresholds derived from the novelty's
// own statistics. Peak positions are absolute sample indices; filter
// group delay is not compensated, so boundaries are relative to the
// click track itself.
//
// Inter-onset intervals drive tempo estimation: sliding windows of 12
// intervals each yield an integer BPM from the median interval. An
// interval at least as long as the configured gap threshold splits the
// track into separate runs with a speaking section between them; a
// window-to-window BPM change of at least the configured threshold
// splits a run at the first deviating interval.
//
// MergeShort and Classify post-process the raw sections: sections
// shorter than the configured minimum fold into a neighbor, and a
// section is a song exactly when it carries a BPM.
package click
