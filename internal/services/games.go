package services

import "ektagames/internal/domain"

var featuredGames = []domain.Game{
	{
		ID:              "cosmic-odyssey",
		Slug:            "cosmic-odyssey",
		Name:            "Cosmic Odyssey",
		Description:     "Explore galaxies in this epic space adventure.",
		LongDescription: "Embark on a journey across the stars in Cosmic Odyssey. Pilot your own starship, discover uncharted planets, and trade with alien civilizations. With a dynamic universe and endless possibilities, your adventure is just beginning.",
		Genre:           "Sci-Fi RPG",
		Platforms:       []string{"PC", "PlayStation 5", "Xbox Series X"},
	},
	{
		ID:              "cyber-runner",
		Slug:            "cyber-runner",
		Name:            "Cyber Runner",
		Description:     "Race through neon-lit cities in a high-speed future.",
		LongDescription: "In the sprawling metropolis of Neo-Kyoto, speed is everything. As a Cyber Runner, you'll take on dangerous delivery missions, outrun corporate security, and upgrade your hoverbike to be the fastest on the streets. Features a stunning synthwave soundtrack and breathtaking visuals.",
		Genre:           "Racing",
		Platforms:       []string{"PC", "Android", "iOS"},
	},
	{
		ID:              "mystic-quest",
		Slug:            "mystic-quest",
		Name:            "Mystic Quest",
		Description:     "Uncover ancient secrets in a world of magic.",
		LongDescription: "The land of Eldoria is shrouded in mystery. As the chosen hero, you must delve into forgotten dungeons, solve ancient puzzles, and wield powerful magic to stop the encroaching darkness. A classic fantasy RPG with a modern twist.",
		Genre:           "Fantasy RPG",
		Platforms:       []string{"PC", "Nintendo Switch"},
	},
	{
		ID:              "ludo-king",
		Slug:            "ludo-king",
		Name:            "Ludo King",
		Description:     "The classic board game, reimagined for the digital age.",
		LongDescription: "Gather your friends and family for a game of Ludo King! This digital version of the beloved classic supports up to 4 players online or locally. With fun animations and customizable rules, it's the perfect game for any occasion.",
		Genre:           "Board Game",
		Platforms:       []string{"Android", "iOS", "Web"},
	},
}

type GameService struct{}

func (GameService) List() []domain.Game {
	out := make([]domain.Game, len(featuredGames))
	copy(out, featuredGames)
	return out
}

func (GameService) BySlug(slug string) (domain.Game, bool) {
	for _, g := range featuredGames {
		if g.Slug == slug {
			return g, true
		}
	}
	return domain.Game{}, false
}
