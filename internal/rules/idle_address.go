package rules

import "github.com/pankaj-dahiya-devops/costwatch/internal/models"

// IdleElasticIP flags an allocated address that has no association.
func IdleElasticIP(a models.AddressRecord) (models.IdleElasticIP, bool) {
	if a.AssociationID != "" {
		return models.IdleElasticIP{}, false
	}
	return models.IdleElasticIP{
		AllocationID: a.AllocationID,
		PublicIP:     a.PublicIP,
		Domain:       a.Domain,
	}, true
}

// IdleElasticIPs applies IdleElasticIP to every record, keeping order.
func IdleElasticIPs(addrs []models.AddressRecord) []models.IdleElasticIP {
	out := []models.IdleElasticIP{}
	for _, a := range addrs {
		if c, ok := IdleElasticIP(a); ok {
			out = append(out, c)
		}
	}
	return out
}
