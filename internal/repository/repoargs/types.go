package repoargs

type RepositoryName string

const (
	WalletRepoName         RepositoryName = "wallet"
	BundleRepoName         RepositoryName = "bundle"
	OrderRepoName          RepositoryName = "order"
	FulfillmentJobRepoName RepositoryName = "fulfillment_job"
)
