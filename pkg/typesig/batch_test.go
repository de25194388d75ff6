package typesig

import (
	"context"
	"fmt"
	"testing"

	. "github.com/onsi/gomega"
)

func TestParseAll(t *testing.T) {
	g := NewWithT(t)

	sigs := make([]string, 50)
	for i := range sigs {
		sigs[i] = fmt.Sprintf("Type%d<int>*", i)
	}

	infos, err := ParseAll(context.Background(), sigs, 4)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(infos).To(HaveLen(len(sigs)))
	for i, info := range infos {
		g.Expect(info.String()).To(Equal(fmt.Sprintf("Type%d< int >*", i)))
	}
}

func TestParseAllEmpty(t *testing.T) {
	g := NewWithT(t)

	infos, err := ParseAll(context.Background(), nil, 0)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(infos).To(BeEmpty())
}

func TestParseAllSyntaxError(t *testing.T) {
	g := NewWithT(t)

	_, err := ParseAll(context.Background(), []string{"int", "bad?", "char"}, 1)
	g.Expect(err).To(MatchError(ErrSyntax))
	g.Expect(err.Error()).To(ContainSubstring("signature 1"))
}

func TestParseAllCancelled(t *testing.T) {
	g := NewWithT(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParseAll(ctx, []string{"int", "char"}, 1)
	g.Expect(err).To(MatchError(context.Canceled))
}

func TestCacheParseAll(t *testing.T) {
	g := NewWithT(t)

	cache, err := NewCache(8)
	g.Expect(err).NotTo(HaveOccurred())

	infos, err := cache.ParseAll(context.Background(), []string{"int", "int", "void (*)()"}, 2)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(infos[0]).To(Equal(infos[1]))
	g.Expect(infos[2].IsBusted).To(BeTrue())
	g.Expect(cache.Size()).To(Equal(2))
}
