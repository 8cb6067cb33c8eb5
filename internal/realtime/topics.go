package realtime

// ProductsTopic carries catalog additions.
const ProductsTopic = "products"

// PointsTopic names the per-user balance stream.
func PointsTopic(identityToken string) string {
	return "points:" + identityToken
}

// BalanceUpdate is the payload published on a points topic.
type BalanceUpdate struct {
	IdentityToken string `json:"identityToken"`
	Points        int64  `json:"points"`
}

// PointsChanged lets the broker act as the award service's notifier.
func (b *Broker) PointsChanged(identityToken string, newTotal int64) {
	b.Publish(PointsTopic(identityToken), BalanceUpdate{IdentityToken: identityToken, Points: newTotal})
}
