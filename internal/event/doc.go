// Package event decodes simulated events from JSON lines. Each line holds
// one event: its simulated tracks and vertices, the reconstructed hits with
// their simulated track id, and the beam spot.
//
//	{"id":1,"beam_spot":[0,0,0],
//	 "tracks":[{"momentum":[1,0,0.5],"energy":1.2,"charge":-1,"vertex":0}],
//	 "vertices":[{"position":[0,0,0],"t":0}],
//	 "hits":[{"det_id":101,"sim_track_id":0,"x":0.1,"y":0.2}]}
//
// Track ids are positions in the tracks array and vertex indices are
// positions in the vertices array. Tracks are visited in ascending id order;
// hits of a track keep their file order.
package event
