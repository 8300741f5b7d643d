package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpritePriorityBuffer_Clear(t *testing.T) {
	buffer := &SpritePriorityBuffer{}
	buffer.ownerIndex[0] = 5
	buffer.ownerX[0] = 10

	buffer.Clear()

	for i := range FramebufferWidth {
		assert.Equal(t, -1, buffer.ownerIndex[i], "pixel %d should have no owner", i)
		assert.Equal(t, 0xFF, buffer.ownerX[i], "pixel %d should have max X value", i)
	}
}

func TestSpritePriorityBuffer_TryClaimPixel(t *testing.T) {
	tests := []struct {
		name          string
		owner, ownerX int
		pixelX        int
		spriteIndex   int
		spriteX       int
		expectedClaim bool
		expectedOwner int
	}{
		{"claim unowned pixel", -1, 0xFF, 50, 2, 20, true, 2},
		{"lower X coordinate wins", 3, 30, 50, 2, 20, true, 2},
		{"higher X coordinate loses", 3, 10, 50, 2, 20, false, 3},
		{"same X - lower OAM index wins", 5, 20, 50, 3, 20, true, 3},
		{"same X - higher OAM index loses", 3, 20, 50, 5, 20, false, 3},
		{"negative sprite X", -1, 0xFF, 0, 1, -4, true, 1},
		{"out of bounds - negative X", -1, 0xFF, -1, 2, 20, false, -1},
		{"out of bounds - X >= width", -1, 0xFF, FramebufferWidth, 2, 20, false, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buffer := &SpritePriorityBuffer{}
			buffer.Clear()
			if tt.owner >= 0 {
				buffer.ownerIndex[tt.pixelX] = tt.owner
				buffer.ownerX[tt.pixelX] = tt.ownerX
			}

			claimed := buffer.TryClaimPixel(tt.pixelX, tt.spriteIndex, tt.spriteX)
			assert.Equal(t, tt.expectedClaim, claimed, "claim result mismatch")
			assert.Equal(t, tt.expectedOwner, buffer.GetOwner(tt.pixelX), "owner mismatch")
		})
	}
}

// claimSprite offers the 8 pixels of a sprite starting at x.
func claimSprite(b *SpritePriorityBuffer, index, x, claimX int) {
	for i := range 8 {
		b.TryClaimPixel(x+i, index, claimX)
	}
}

func TestSpritePriorityBuffer_DMGOverlap(t *testing.T) {
	buffer := &SpritePriorityBuffer{}
	buffer.Clear()

	// OAM order 1, 3, 5 with sprite 5 furthest left
	claimSprite(buffer, 1, 12, 12)
	claimSprite(buffer, 3, 12, 12)
	claimSprite(buffer, 5, 10, 10)

	for i := 10; i <= 17; i++ {
		assert.Equal(t, 5, buffer.GetOwner(i), "pixel %d should be owned by sprite 5 (lowest X)", i)
	}
	for i := 18; i <= 19; i++ {
		assert.Equal(t, 1, buffer.GetOwner(i), "pixel %d should be owned by sprite 1 (lower OAM)", i)
	}
}

func TestSpritePriorityBuffer_ColorOverlap(t *testing.T) {
	buffer := &SpritePriorityBuffer{}
	buffer.Clear()

	// color mode claims with X=0, so only OAM order counts
	claimSprite(buffer, 1, 12, 0)
	claimSprite(buffer, 5, 10, 0)

	for i := 10; i <= 11; i++ {
		assert.Equal(t, 5, buffer.GetOwner(i), "pixel %d", i)
	}
	for i := 12; i <= 19; i++ {
		assert.Equal(t, 1, buffer.GetOwner(i), "pixel %d", i)
	}
}
