package handlers

import (
	"testing"

	"wuroud-pos/internal/models"
)

func TestPacketUpdateValid(t *testing.T) {
	plain := models.Product{ID: 1, Name: "Tea Powder"}
	packet := models.Product{ID: 2, Name: "Tea Powder", IsPacket: true, PacketSize: 4}

	cases := []struct {
		name    string
		product models.Product
		update  map[string]interface{}
		want    bool
	}{
		{"flip packet on without size", plain, map[string]interface{}{"is_packet": true}, false},
		{"flip packet on with size", plain, map[string]interface{}{"is_packet": true, "packet_size": float64(4)}, true},
		{"flip packet on with zero size", plain, map[string]interface{}{"is_packet": true, "packet_size": float64(0)}, false},
		{"zero out size on a packet", packet, map[string]interface{}{"packet_size": float64(0)}, false},
		{"price change on a packet", packet, map[string]interface{}{"price": float64(200)}, true},
		{"flip packet off", packet, map[string]interface{}{"is_packet": false}, true},
		{"plain product untouched", plain, map[string]interface{}{"name": "Green Tea"}, true},
	}

	for _, tc := range cases {
		if got := packetUpdateValid(tc.product, tc.update); got != tc.want {
			t.Errorf("%s: packetUpdateValid = %v, want %v", tc.name, got, tc.want)
		}
	}
}
