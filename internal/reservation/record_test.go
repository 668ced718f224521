// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package reservation

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `<?xml version="1.0" encoding="UTF-8"?>
<response>
  <reservations>
    <reservation>
      <resId>42</resId>
      <comId>1001</comId>
      <voucher>V-42</voucher>
      <status><statusId>2</statusId></status>
      <object><name>101</name></object>
      <guest><name>Jan Novák</name></guest>
      <alfredCodeList><alfredCode><pin>1234</pin></alfredCode></alfredCodeList>
      <cardDataList><cardData><key>K1</key></cardData></cardDataList>
      <term><from>2025-03-12 14:00:00</from><to>2025-03-14 10:00:00</to></term>
      <price>100.00</price>
      <marketCodeList><marketCode>WEB</marketCode><marketCode>OTA</marketCode></marketCodeList>
    </reservation>
    <reservation>
      <resId>42</resId>
      <comId>1002</comId>
      <object><name>102</name></object>
      <term><from>2025-03-12 14:00:00</from><to>2025-03-14 10:00:00</to></term>
      <price>50.00</price>
      <marketCodeList><marketCode>WEB</marketCode></marketCodeList>
    </reservation>
    <group>
      <reservation>
        <resId>42</resId>
        <comId>1003</comId>
        <object><name>103</name></object>
        <price>25.00</price>
      </reservation>
    </group>
    <reservation>
      <voucher>orphan</voucher>
    </reservation>
    <reservation>
      <resId>7</resId>
      <guest><name></name></guest>
    </reservation>
  </reservations>
</response>`

func TestParseResponse_AnyDepth(t *testing.T) {
	recs, err := ParseResponse([]byte(sampleResponse))
	require.NoError(t, err)
	require.Len(t, recs, 5)

	status := "2"
	price := "100.00"
	want := Record{
		ResID:       "42",
		ComID:       "1001",
		Voucher:     "V-42",
		StatusID:    &status,
		Room:        "101",
		Guest:       "Jan Novák",
		AlfredPins:  []string{"1234"},
		CardKeys:    []string{"K1"},
		From:        "2025-03-12 14:00:00",
		To:          "2025-03-14 10:00:00",
		Price:       &price,
		MarketCodes: []string{"WEB", "OTA"},
	}
	if diff := cmp.Diff(want, recs[0]); diff != "" {
		t.Errorf("first record mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "1003", recs[2].ComID)
	assert.Empty(t, recs[3].ResID)
	assert.Equal(t, "7", recs[4].ResID)
	assert.Nil(t, recs[4].StatusID)
}

func TestParseResponse_NoReservations(t *testing.T) {
	recs, err := ParseResponse([]byte(`<response><reservations/></response>`))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestParseResponse_Malformed(t *testing.T) {
	for name, body := range map[string]string{
		"empty":     "",
		"truncated": "<response><reservation><resId>1</resId>",
		"text":      "Internal Server Error",
		"entity":    "<response>&xxe;</response>",
	} {
		t.Run(name, func(t *testing.T) {
			recs, err := ParseResponse([]byte(body))
			require.Error(t, err)
			assert.Nil(t, recs)

			var pe *ParseError
			assert.True(t, errors.As(err, &pe))
		})
	}
}
