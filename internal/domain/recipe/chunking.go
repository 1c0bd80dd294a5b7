package recipe

import (
	"fmt"
	"strings"
)

// DefaultChunkSize is the character budget of an instructions chunk.
const DefaultChunkSize = 500

// ChunkDocument splits a document into a title chunk, an ingredients chunk
// and one or more instructions chunks. Instructions longer than chunkSize
// characters are cut into windows of chunkSize/6 words.
func ChunkDocument(doc Document, chunkSize int) []Chunk {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	newChunk := func(id string, kind ChunkKind, content string) Chunk {
		return Chunk{
			ID:          id,
			DocID:       doc.ID,
			Content:     content,
			Kind:        kind,
			Cuisine:     doc.Cuisine,
			Difficulty:  doc.Difficulty,
			CookingTime: doc.CookingTime,
		}
	}

	chunks := []Chunk{
		newChunk(doc.ID+"_title", ChunkTitle, "Recipe: "+doc.Title),
		newChunk(doc.ID+"_ingredients", ChunkIngredients,
			fmt.Sprintf("Ingredients for %s: %s", doc.Title, strings.Join(doc.Ingredients, ", "))),
	}

	instructions := fmt.Sprintf("Instructions for %s: %s", doc.Title, strings.Join(doc.Instructions, " "))
	if len(instructions) <= chunkSize {
		return append(chunks, newChunk(doc.ID+"_instructions", ChunkInstructions, instructions))
	}

	words := strings.Fields(instructions)
	window := chunkSize / 6
	if window < 1 {
		window = 1
	}
	for i := 0; i < len(words); i += window {
		end := i + window
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, newChunk(
			fmt.Sprintf("%s_instructions_%d", doc.ID, i),
			ChunkInstructions,
			strings.Join(words[i:end], " "),
		))
	}
	return chunks
}
