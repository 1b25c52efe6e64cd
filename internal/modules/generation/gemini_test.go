package generation

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleRateFromMIME(t *testing.T) {
	assert.Equal(t, 24000, sampleRateFromMIME("audio/L16;codec=pcm;rate=24000"))
	assert.Equal(t, 16000, sampleRateFromMIME("audio/L16; rate=16000"))
	assert.Equal(t, 24000, sampleRateFromMIME("audio/L16"), "missing rate falls back to 24000")
	assert.Equal(t, 24000, sampleRateFromMIME("audio/L16;rate=bogus"))
}

func TestWavFromPCMHeader(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	wav := wavFromPCM(pcm, 24000)

	require.Len(t, wav, 44+len(pcm))
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, "fmt ", string(wav[12:16]))
	assert.Equal(t, "data", string(wav[36:40]))

	assert.EqualValues(t, 36+len(pcm), binary.LittleEndian.Uint32(wav[4:8]))
	assert.EqualValues(t, 1, binary.LittleEndian.Uint16(wav[22:24]), "mono")
	assert.EqualValues(t, 24000, binary.LittleEndian.Uint32(wav[24:28]))
	assert.EqualValues(t, 16, binary.LittleEndian.Uint16(wav[34:36]), "16-bit samples")
	assert.EqualValues(t, len(pcm), binary.LittleEndian.Uint32(wav[40:44]))
	assert.Equal(t, pcm, wav[44:])
}

func TestContainAudioWrapsRawPCM(t *testing.T) {
	audio := containAudio("audio/L16;rate=24000", []byte{0x00, 0x01})
	assert.Equal(t, "audio/wav", audio.MIMEType)
	assert.Equal(t, "RIFF", string(audio.Data[0:4]))
}

func TestContainAudioPassesThroughContainerized(t *testing.T) {
	data := []byte("OggS....")
	audio := containAudio("audio/ogg", data)
	assert.Equal(t, "audio/ogg", audio.MIMEType)
	assert.Equal(t, data, audio.Data)
}

func TestLooksLikeContentRejection(t *testing.T) {
	assert.True(t, looksLikeContentRejection("request was BLOCKED by safety filters"))
	assert.True(t, looksLikeContentRejection("PROHIBITED_CONTENT"))
	assert.False(t, looksLikeContentRejection("429 resource exhausted"))
	assert.False(t, looksLikeContentRejection("connection refused"))
}
