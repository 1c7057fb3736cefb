// Package pantilt provides the core types shared by the pan/tilt tracking rig.
//
// The package defines the values exchanged between the control loop, the
// perception loop and the hardware collaborators:
//
//   - [Sample]: position/velocity of one axis for one control tick
//   - [Pair]: a setpoint or feedback reading for both axes
//   - [Pose]: motor position only, as published to the perception loop
//   - [Detection]: an absolute pan/tilt estimate of one object in one frame
//   - [Actuator]: the motor transport (send setpoints, receive feedback)
//
// # Angles
//
// All angles are radians and all velocities radians per second. Pan is the
// first axis of every pair, tilt the second.
package pantilt
