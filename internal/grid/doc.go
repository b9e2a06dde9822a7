// Package grid rebuilds the logical question × choice grid from unordered
// bubble candidates and measures how filled each cell is.
//
// Assembly is behind the Assembler interface. The only strategy today is the
// uniform one: rows are assumed evenly spaced over the vertical span of all
// candidates. It is fragile to skew and partial occlusion; a per-row adaptive
// strategy can replace it without touching detection or scoring.
package grid
