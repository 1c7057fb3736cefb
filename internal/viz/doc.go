// Package viz is the live operator console for a running rig.
//
// The console polls the rig's recorder at a fixed frame rate, draws the
// commanded pose, the latest object and the scan envelope on a braille
// canvas, and turns the keys s, z, t and q into command tokens on a
// command.Queue that the control loop drains each tick.
package viz
